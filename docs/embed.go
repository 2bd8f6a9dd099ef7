// Copyright © 2024 The BPLint authors

// Package docs embeds the bplint user guides for use by the CLI.
package docs

import _ "embed"

// DirectivesGuide describes the suppression directives.
//
//go:embed directives.md
var DirectivesGuide string

// DirectivesSummary is a short form of DirectivesGuide for command help.
const DirectivesSummary = `To suppress findings, add a directive comment inside the enclosing element.
It applies until that element closes:
  <!-- bplint-disable no-auto-binding, no-missing-import -->
  <!-- bplint-disable -->                  (all rules)
  <!-- bplint-enable no-auto-binding -->   (re-enable in a nested element)
See "bplint rules --guide" for details.
`
