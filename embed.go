package pubfeed

import _ "embed"

// feedStylesheet is the XSLT that renders rss.xml as a readable page in
// browsers. It is served at SiteConfig.FeedStylesheet.
//
//go:embed embedded/styles.xsl
var feedStylesheet []byte
