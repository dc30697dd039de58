package assets

import "io"

type Config struct {
	// Project root; relative plugin paths resolve against it
	Root string
	// Path to a custom index template, the built-in page is used when empty
	Template string
	// Whether to write a bundle size report to Stats after each build
	Analyze bool
	Stats   io.Writer
	// URL of the live reload event stream injected into the page, disabled when empty
	LiveReload string
	// Called after the post build phases of every successful build
	OnRebuild func()
}

// DefaultConfig returns a configuration rooted at root using the built-in page template
func DefaultConfig(root string) Config {
	return Config{
		Root: root,
	}
}
