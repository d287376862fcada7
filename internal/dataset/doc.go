// Package dataset loads tabular CSV data for model fitting.
//
// A [Dataset] keeps every cell as text plus its numeric value when the text
// parses, so mixed columns survive a round trip through [Dataset.WriteCSV].
// [Dataset.Data] extracts the fully numeric columns in the form the formula
// parser expects.
package dataset
