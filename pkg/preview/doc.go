// Package preview builds bookmark previews from a page's Open Graph and
// Twitter card metadata.
//
// A [Fetcher] downloads the page with retry, extracts the title, description
// and cover image, and caches the result:
//
//	f := preview.NewFetcher(preview.WithCache(c))
//	p, err := f.Fetch(ctx, "https://go.dev/blog")
//
// [Extract] does the parsing alone and can be used on HTML obtained
// elsewhere. Relative image URLs are resolved against the page URL.
package preview
