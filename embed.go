package drakkar

import "embed"

// EmbeddedAssets contains the default theme shipped with the engine:
// stylesheets, component scripts, images and the version manifest. It is
// served under /assets unless SiteConfig.AssetsDir points elsewhere.
//
//go:embed embedded
var EmbeddedAssets embed.FS
