// Package init triggers comment sink registration via import side-effects.
//
//	import _ "github.com/sanix-darker/reviewbot/internal/vcs/init"
package init

import (
	_ "github.com/sanix-darker/reviewbot/internal/vcs/github"
)
