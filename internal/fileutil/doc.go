// Package fileutil discovers the Markdown documents to analyze.
//
// Command-line arguments may name files or directories. Directories are
// walked recursively; hidden directories and the usual dependency trees
// (node_modules, vendor) are skipped, as are project meta files such as
// CHANGELOG.md and CONTRIBUTING.md that are not documentation prose.
// Files named explicitly are always included.
//
// Output is sorted and de-duplicated so that runs are deterministic:
//
//	result, err := fileutil.CollectMarkdown([]string{"docs", "README.md"}, fileutil.DefaultMarkdownOptions())
//	if err != nil {
//	    return err
//	}
//	for _, err := range result.Errors {
//	    log.Printf("skipped: %v", err)
//	}
//
// Non-fatal problems (an unreadable subdirectory) are collected in
// ScanResult.Errors and scanning continues. A missing file argument is
// passed through; reading it later yields that document's error result.
package fileutil
