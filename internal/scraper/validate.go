// internal/scraper/validate.go
package scraper

import (
	"net/url"
	"regexp"
	"strings"
)

// linkBlockwords are navigation/authentication/commerce keywords that mark
// a URL as a non-product link. Path segments (split on "/" then "-") and
// the query string are checked for exact word matches. Exact matching on
// hyphen-split words is deliberately loose: short keywords like "api" can
// reject legitimate slugs, a trade-off kept from production behavior.
var linkBlockwords = map[string]bool{
	"login": true, "signin": true, "signup": true, "register": true,
	"auth": true, "oauth": true, "logout": true, "password": true,
	"account": true, "profile": true, "wishlist": true, "favorites": true,
	"cart": true, "basket": true, "checkout": true, "payment": true,
	"order": true, "orders": true, "track": true, "help": true,
	"support": true, "contact": true, "about": true, "faq": true,
	"terms": true, "privacy": true, "policy": true, "cookie": true,
	"api": true, "cdn": true, "static": true, "assets": true,
	"facebook": true, "instagram": true, "twitter": true, "youtube": true,
	"tiktok": true, "pinterest": true, "linkedin": true, "whatsapp": true,
}

// blockedHostFragments reject links pointing off-site to social networks.
var blockedHostFragments = []string{
	"facebook.com", "instagram.com", "twitter.com", "x.com",
	"youtube.com", "tiktok.com", "pinterest.com", "linkedin.com",
	"wa.me", "whatsapp.com",
}

var imageExtensionPattern = regexp.MustCompile(`(?i)\.(jpe?g|png|gif|webp|avif|svg|bmp|ico)(\?|$)`)

// imageCDNPatterns accept image URLs without a file extension. Many CDNs
// address images by opaque IDs plus resize parameters, so extension
// checking alone rejects valid product images.
var imageCDNPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/cdn/shop/(files|products)/[^/?]+`),          // Shopify
	regexp.MustCompile(`/is/image/`),                                 // Akamai / Scene7
	regexp.MustCompile(`/image/upload/(.+/)?v\d+/`),                  // Cloudinary
	regexp.MustCompile(`(?i)[?&](w|h|width|height|size|resize)=\d+`), // generic resize services
	regexp.MustCompile(`/(media|images|photos|assets|content)/`),     // media directory segment
}

var videoExtensionPattern = regexp.MustCompile(`(?i)\.(mp4|webm|ogv|m3u8|mov|mpd)(\?|$)`)

var videoCDNPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(youtube\.com/(watch|embed)|youtu\.be/)`),
	regexp.MustCompile(`(?i)vimeo\.com/`),
	regexp.MustCompile(`/video/upload/`), // Cloudinary video
	regexp.MustCompile(`(?i)/(videos?|media)/[^/?]+`),
}

// Validator computes per-field validity for assembled records. It never
// rejects or drops: every field gets a flag and downstream consumers decide
// what to do with invalid records.
type Validator struct{}

// NewValidator creates a validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate produces the validated form of a raw record.
func (v *Validator) Validate(record RawProductRecord) ValidatedProductRecord {
	validated := ValidatedProductRecord{RawProductRecord: record}

	validated.TitleValid = TextValid(record.Title)
	validated.PageTitleValid = TextValid(record.PageTitle)
	validated.LinkValid = LinkValid(record.Link)
	validated.ImgValid = imagesValid(record.Images)

	if len(record.Videos) > 0 {
		validated.VideoValid = videosValid(record.Videos)
		validated.MediaType = MediaTypeVideo
	} else {
		validated.MediaType = MediaTypeImage
	}

	validated.PriceValid = priceValid(record)

	return validated
}

// TextValid reports whether a text field is usable: non-empty after trim
// and not a stringified nil from an upstream bug.
func TextValid(text string) bool {
	trimmed := strings.TrimSpace(text)
	return trimmed != "" && trimmed != "undefined" && trimmed != "null"
}

// LinkValid checks that a link is an absolute http(s) URL whose path and
// query carry no blocklisted navigation keyword.
func LinkValid(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Host)
	for _, fragment := range blockedHostFragments {
		if strings.Contains(host, fragment) {
			return false
		}
	}

	for _, segment := range strings.Split(strings.ToLower(u.Path), "/") {
		if segment == "" {
			continue
		}
		if linkBlockwords[segment] {
			return false
		}
		for _, word := range strings.Split(segment, "-") {
			if linkBlockwords[word] {
				return false
			}
		}
	}

	if q := strings.ToLower(u.RawQuery); q != "" {
		for _, pair := range strings.Split(q, "&") {
			for _, word := range strings.FieldsFunc(pair, func(r rune) bool { return r == '=' || r == '-' }) {
				if linkBlockwords[word] {
					return false
				}
			}
		}
	}

	return true
}

// ImageURLValid checks one image URL: protocol-relative URLs are upgraded
// to https, then the URL must be absolute http(s) and either carry an image
// extension or match a known CDN shape.
func ImageURLValid(raw string) bool {
	candidate := normalizeCheckURL(raw)
	if candidate == "" {
		return false
	}
	if imageExtensionPattern.MatchString(candidate) {
		return true
	}
	for _, pattern := range imageCDNPatterns {
		if pattern.MatchString(candidate) {
			return true
		}
	}
	return false
}

// VideoURLValid checks one video URL against extension and platform
// patterns.
func VideoURLValid(raw string) bool {
	candidate := normalizeCheckURL(raw)
	if candidate == "" {
		return false
	}
	if videoExtensionPattern.MatchString(candidate) {
		return true
	}
	for _, pattern := range videoCDNPatterns {
		if pattern.MatchString(candidate) {
			return true
		}
	}
	return false
}

func imagesValid(images []string) bool {
	if len(images) == 0 {
		return false
	}
	for _, img := range images {
		if !ImageURLValid(img) {
			return false
		}
	}
	return true
}

func videosValid(videos []string) bool {
	for _, video := range videos {
		if !VideoURLValid(video) {
			return false
		}
	}
	return true
}

// priceValid is true when any parsed price is positive. Availability
// overrides price validity: a product marked not-in-stock is exempt from
// price checks no matter what the parser produced. Intentional quirk,
// preserved from production behavior.
func priceValid(record RawProductRecord) bool {
	if record.ProductNotInStock {
		return true
	}
	for _, price := range record.Prices {
		if !price.PriceScrapeError && price.NumericValue > 0 {
			return true
		}
	}
	return false
}

// normalizeCheckURL upgrades protocol-relative URLs, re-encodes unsafe
// characters, and returns the string form when it parses as absolute
// http(s); empty string otherwise.
func normalizeCheckURL(raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}
	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return ""
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}
	return u.String()
}
