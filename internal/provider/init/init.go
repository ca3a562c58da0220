// Package init exists solely to trigger provider registration via import
// side-effects. Import this package once in your main or cmd layer:
//
//	import _ "github.com/sanix-darker/reviewbot/internal/provider/init"
//
// This registers all built-in providers (openai, anthropic, gemini) with the
// global provider.Registry.
package init

import (
	_ "github.com/sanix-darker/reviewbot/internal/provider/anthropic"
	_ "github.com/sanix-darker/reviewbot/internal/provider/gemini"
	_ "github.com/sanix-darker/reviewbot/internal/provider/openai"
)
