// Command manga-dl downloads manga chapters from the command line.
//
// Usage:
//
//	manga-dl download <url> [--chapters 1-10] [--format pdf|epub|cbz|none] [--delete-after]
//	manga-dl chapters <url>
//	manga-dl convert <title> <number...> --format cbz [--delete-after]
//	manga-dl history [run-id] [--limit 20]
//
// Settings are read from the TOML file given with --config, or from the
// default location when the flag is omitted. For interactive mode, use
// manga-tui.
package main
