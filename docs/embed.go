// Copyright © 2018 The ELPS authors

// Package docs embeds the scm language reference for use by the CLI.
package docs

import _ "embed"

//go:embed lang.md
var LangGuide string
