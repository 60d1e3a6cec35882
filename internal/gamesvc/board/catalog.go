package board

// catalog is the classic 40-square board, position 1 = GO.
var catalog = [40]Square{
	{ID: 1, Name: "GO", Kind: KindSpecial, Group: "0"},
	{ID: 2, Name: "Mediterranean Avenue", Kind: KindStreet, Group: "1", Price: 60, Rent: [6]int64{2, 10, 30, 90, 160, 250}, HouseCost: 50},
	{ID: 3, Name: "Community Chest", Kind: KindSpecial, Group: "0"},
	{ID: 4, Name: "Baltic Avenue", Kind: KindStreet, Group: "1", Price: 60, Rent: [6]int64{4, 20, 60, 180, 320, 450}, HouseCost: 50},
	{ID: 5, Name: "Income Tax", Kind: KindSpecial, Group: "0"},
	{ID: 6, Name: "Reading Railroad", Kind: KindRailway, Group: "0", Price: 200},
	{ID: 7, Name: "Oriental Avenue", Kind: KindStreet, Group: "2", Price: 100, Rent: [6]int64{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{ID: 8, Name: "Chance", Kind: KindSpecial, Group: "0"},
	{ID: 9, Name: "Vermont Avenue", Kind: KindStreet, Group: "2", Price: 100, Rent: [6]int64{6, 30, 90, 270, 400, 550}, HouseCost: 50},
	{ID: 10, Name: "Connecticut Avenue", Kind: KindStreet, Group: "2", Price: 120, Rent: [6]int64{8, 40, 100, 300, 450, 600}, HouseCost: 50},
	{ID: 11, Name: "Jail", Kind: KindSpecial, Group: "0"},
	{ID: 12, Name: "St. Charles Place", Kind: KindStreet, Group: "3", Price: 140, Rent: [6]int64{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{ID: 13, Name: "Electric Company", Kind: KindUtility, Group: "0", Price: 150},
	{ID: 14, Name: "States Avenue", Kind: KindStreet, Group: "3", Price: 140, Rent: [6]int64{10, 50, 150, 450, 625, 750}, HouseCost: 100},
	{ID: 15, Name: "Virginia Avenue", Kind: KindStreet, Group: "3", Price: 160, Rent: [6]int64{12, 60, 180, 500, 700, 900}, HouseCost: 100},
	{ID: 16, Name: "Pennsylvania Railroad", Kind: KindRailway, Group: "0", Price: 200},
	{ID: 17, Name: "St. James Place", Kind: KindStreet, Group: "4", Price: 180, Rent: [6]int64{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{ID: 18, Name: "Community Chest", Kind: KindSpecial, Group: "0"},
	{ID: 19, Name: "Tennessee Avenue", Kind: KindStreet, Group: "4", Price: 180, Rent: [6]int64{14, 70, 200, 550, 750, 950}, HouseCost: 100},
	{ID: 20, Name: "New York Avenue", Kind: KindStreet, Group: "4", Price: 200, Rent: [6]int64{16, 80, 220, 600, 800, 1000}, HouseCost: 100},
	{ID: 21, Name: "Free Parking", Kind: KindSpecial, Group: "0"},
	{ID: 22, Name: "Kentucky Avenue", Kind: KindStreet, Group: "5", Price: 220, Rent: [6]int64{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{ID: 23, Name: "Chance", Kind: KindSpecial, Group: "0"},
	{ID: 24, Name: "Indiana Avenue", Kind: KindStreet, Group: "5", Price: 220, Rent: [6]int64{18, 90, 250, 700, 875, 1050}, HouseCost: 150},
	{ID: 25, Name: "Illinois Avenue", Kind: KindStreet, Group: "5", Price: 240, Rent: [6]int64{20, 100, 300, 750, 925, 1100}, HouseCost: 150},
	{ID: 26, Name: "B&O Railroad", Kind: KindRailway, Group: "0", Price: 200},
	{ID: 27, Name: "Atlantic Avenue", Kind: KindStreet, Group: "6", Price: 260, Rent: [6]int64{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{ID: 28, Name: "Ventnor Avenue", Kind: KindStreet, Group: "6", Price: 260, Rent: [6]int64{22, 110, 330, 800, 975, 1150}, HouseCost: 150},
	{ID: 29, Name: "Water Works", Kind: KindUtility, Group: "0", Price: 150},
	{ID: 30, Name: "Marvin Gardens", Kind: KindStreet, Group: "6", Price: 280, Rent: [6]int64{24, 120, 360, 850, 1025, 1200}, HouseCost: 150},
	{ID: 31, Name: "Go To Jail", Kind: KindSpecial, Group: "0"},
	{ID: 32, Name: "Pacific Avenue", Kind: KindStreet, Group: "7", Price: 300, Rent: [6]int64{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{ID: 33, Name: "North Carolina Avenue", Kind: KindStreet, Group: "7", Price: 300, Rent: [6]int64{26, 130, 390, 900, 1100, 1275}, HouseCost: 200},
	{ID: 34, Name: "Community Chest", Kind: KindSpecial, Group: "0"},
	{ID: 35, Name: "Pennsylvania Avenue", Kind: KindStreet, Group: "7", Price: 320, Rent: [6]int64{28, 150, 450, 1000, 1200, 1400}, HouseCost: 200},
	{ID: 36, Name: "Short Line", Kind: KindRailway, Group: "0", Price: 200},
	{ID: 37, Name: "Chance", Kind: KindSpecial, Group: "0"},
	{ID: 38, Name: "Park Place", Kind: KindStreet, Group: "8", Price: 350, Rent: [6]int64{35, 175, 500, 1100, 1300, 1500}, HouseCost: 200},
	{ID: 39, Name: "Luxury Tax", Kind: KindSpecial, Group: "0"},
	{ID: 40, Name: "Boardwalk", Kind: KindStreet, Group: "8", Price: 400, Rent: [6]int64{50, 200, 600, 1400, 1700, 2000}, HouseCost: 200},
}
