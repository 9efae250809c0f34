package provider

import "regexp"

// Extractor describes one provider-side URL recognition rule.
type Extractor struct {
	// Key is the internal extractor key, stable across provider releases.
	Key string
	// Name is the public extractor name reported in listing results.
	Name string
	// ValidURL is the extractor's own recognition rule. Its capture groups
	// feed match fingerprints, so changing a pattern is a provider upgrade.
	ValidURL *regexp.Regexp
}

// DefaultExtractors returns the recognition rules in classification order.
// Order matters: the first matching rule wins, so narrow rules (playlist,
// channel, user) precede the broad per-site catch-alls.
func DefaultExtractors() []Extractor {
	return []Extractor{
		{
			Key:      "YoutubePlaylist",
			Name:     "youtube:playlist",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/(?:playlist|watch)\?(?:[^#]*&)?list=([0-9A-Za-z_-]+)`),
		},
		{
			Key:      "YoutubeChannel",
			Name:     "youtube:channel",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/channel/([0-9A-Za-z_-]+)(?:/(videos|playlists|featured))?`),
		},
		{
			Key:      "YoutubeUser",
			Name:     "youtube:user",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/(user|c)/([0-9A-Za-z_-]+)`),
		},
		{
			Key:      "Youtube",
			Name:     "youtube",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:(?:www|m|music)\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|v/)|youtu\.be/)([0-9A-Za-z_-]{11})`),
		},
		{
			Key:      "Dailymotion",
			Name:     "dailymotion",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?dailymotion\.com/(?:embed/)?video/([a-z0-9]+)`),
		},
		{
			Key:      "DailymotionUser",
			Name:     "dailymotion:user",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?dailymotion\.com/(?:(old)/)?(?:user/)?([^/?#]+)/?$`),
		},
		{
			Key:      "VimeoChannel",
			Name:     "vimeo:channel",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?vimeo\.com/channels/([^/?#]+)(?:/videos)?`),
		},
		{
			Key:      "VimeoUser",
			Name:     "vimeo:user",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?vimeo\.com/([^/?#]+)/videos`),
		},
		{
			Key:      "Vimeo",
			Name:     "vimeo",
			ValidURL: regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:player\.)?vimeo\.com/(?:video/)?(\d+)`),
		},
	}
}

// KeysByName maps public extractor names to internal keys for the given rules.
func KeysByName(extractors []Extractor) map[string]string {
	byName := make(map[string]string, len(extractors))
	for _, ex := range extractors {
		byName[ex.Name] = ex.Key
	}
	return byName
}
