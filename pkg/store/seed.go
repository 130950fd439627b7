package store

import "librarycatalog/pkg/domain"

// SeedBooks is the baseline catalog inserted at startup. Seeding goes
// through FindOrCreateBook, so entries already present are left untouched
// and running it again is a no-op.
var SeedBooks = []domain.Book{
	{Title: "The Hitchhiker's Guide to the Galaxy", Author: "Douglas Adams", Year: 1979, Genre: "Sci-Fi"},
	{Title: "To Kill a Mockingbird", Author: "Harper Lee", Year: 1960, Genre: "Fiction"},
	{Title: "1984", Author: "George Orwell", Year: 1949, Genre: "Dystopian"},
	{Title: "The Martian", Author: "Andy Weir", Year: 2011, Genre: "Sci-Fi"},
	{Title: "Hail Mary", Author: "Andy Weir", Year: 2021, Genre: "Sci-Fi"},
	{Title: "Hyperion", Author: "Dan Simmons", Year: 1989, Genre: "Fiction"},
	{Title: "Three Body Problem", Author: "Cixin Liu", Year: 2008, Genre: "Sci-Fi"},
	{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: "Sci-Fi"},
	{Title: "Atlas Shrugged", Author: "Ayn Rand", Year: 1957, Genre: "Sci-Fi"},
	{Title: "Harry Potter and the Sorcerer's Stone", Author: "J.K. Rowling", Year: 1997, Genre: "Fantasy"},
	{Title: "Accelerando", Author: "Charles Stross", Year: 2005, Genre: "Sci-Fi"},
	{Title: "The Giver", Author: "Lois Lowry", Year: 1993, Genre: "Fiction"},
	{Title: "The Hunger Games", Author: "Suzanne Collins", Year: 2008, Genre: "Fiction"},
	{Title: "The Hobbit", Author: "J.R.R. Tolkien", Year: 1937, Genre: "Fantasy"},
	{Title: "Green Eggs and Ham", Author: "Dr. Seuss", Year: 1960, Genre: "Childrens"},
}
