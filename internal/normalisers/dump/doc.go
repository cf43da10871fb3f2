// Package dump loads structured document dumps: a JSON object with
// document_info, document_summary and an ordered list of pages, each
// page holding free text and zero or more tables.
//
// The reader is lenient about syntax (comments and trailing commas are
// stripped first) and about optional fields, which default to empty
// values. It is strict about identity: a page without page_id, a table
// without table_id or title, or two tables sharing a title in the same
// document fail the load.
package dump
