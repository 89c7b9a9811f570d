// Package report renders pageguard results.
//
// Writers turn a summary panel view, a batch of audits or a password
// strength result into one output format:
//   - SimpleWriter: terminal text, values coloured by status class
//   - MarkdownWriter: GitHub Flavored Markdown with tables and alerts
//   - JSONWriter: structured JSON for tool integration
//
// Writers implement the Writer interface and can be combined with
// MultiWriter.
package report
