package analysis

import "vgsales_dashboard/internal/dataset"

func salesTable() *dataset.Table {
	return dataset.NewTable([]dataset.GameRecord{
		{Title: "Wii Sports", Platform: "Wii", Year: 2006, Genre: "Sports", NA: 41.49, EU: 29.02, JP: 3.77, Other: 8.46, Global: 82.53},
		{Title: "Super Mario Bros.", Platform: "NES", Year: 1985, Genre: "Platform", NA: 29.08, EU: 3.58, JP: 6.81, Other: 0.77, Global: 40.24},
		{Title: "Mario Kart Wii", Platform: "Wii", Year: 2008, Genre: "Racing", NA: 15.85, EU: 12.88, JP: 3.79, Other: 3.31, Global: 35.82},
		{Title: "Nintendogs", Platform: "DS", Year: 2005, Genre: "Simulation", NA: 9.05, EU: 10.95, JP: 1.93, Other: 2.74, Global: 24.67},
		{Title: "Mario Kart DS", Platform: "DS", Year: 2005, Genre: "Racing", NA: 9.71, EU: 7.47, JP: 4.13, Other: 1.90, Global: 23.21},
		{Title: "Call of Duty: Modern Warfare 3", Platform: "X360", Year: 2011, Genre: "Shooter", NA: 9.04, EU: 4.24, JP: 0.13, Other: 1.32, Global: 14.73},
		{Title: "FIFA 16", Platform: "PS4", Year: 2015, Genre: "Sports", NA: 1.11, EU: 6.06, JP: 0.06, Other: 1.26, Global: 8.49},
		{Title: "Tetris", Platform: "GB", Year: 1989, Genre: "Puzzle", NA: 23.2, EU: 2.26, JP: 4.22, Other: 0.58, Global: 30.26},
		{Title: "Pokemon Red/Pokemon Blue", Platform: "GB", Year: 1996, Genre: "Role-Playing", NA: 11.27, EU: 8.89, JP: 10.22, Other: 1.00, Global: 31.37},
		{Title: "Call of Duty: Black Ops", Platform: "X360", Year: 2010, Genre: "Shooter", NA: 9.7, EU: 3.68, JP: 0.11, Other: 1.13, Global: 14.61},
	})
}

func titles(t *dataset.Table) []string {
	out := make([]string, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		out = append(out, t.At(i).Title)
	}
	return out
}
