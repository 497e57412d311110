// Package notice stores the local notice artifact that delivered items are
// appended to.
//
// A notice is one file per day named "YYYY-MM-DD <label>.<ext>". When the
// day's file does not exist yet it is copied from the monthly template
// "YYYY-MM-xx <label>.<ext>" in the same directory.
//
// Three formats are supported. Word documents (docx) are edited in place at
// the paragraph level so styles and other parts survive. Spreadsheets (xlsx)
// treat each row of the first sheet as a paragraph. Plain text (txt) treats
// each line as a paragraph.
package notice
