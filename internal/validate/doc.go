// Package validate checks a merged bundler configuration before it is handed
// to the asset pipeline.
//
// Errors cover the shape the pipeline relies on: entries, an absolute output
// path, supported filename placeholders, well formed loader rules and plugin
// descriptors whose phase and ordering constraints hold. Purify must follow
// extraction, and clean must run in the prepare phase. Everything else is
// reported as a warning, which quiet mode suppresses.
package validate
