package converter

import "regexp"

// Builtin returns the converter registry for the providers the catalog can
// canonicalize. The patterns track the unique portion of each provider's URL
// grammar; they are deliberately narrower than the extractor recognition
// rules, which may accept surface forms that carry no stable identity.
func Builtin() Registry {
	return Registry{
		"Youtube": New(
			regexp.MustCompile(`^(?:https?://)?(?:(?:www|m|music)\.)?(?:youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|v/)|youtu\.be/)([0-9A-Za-z_-]{11})`),
			firstGroup,
			"https://www.youtube.com/watch?v=%s",
		),
		"YoutubePlaylist": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/(?:playlist\?(?:[^#]*&)?list=([0-9A-Za-z_-]+)|watch\?(?:[^#]*&)?list=([0-9A-Za-z_-]+))`),
			func(groups []string) string {
				if groups[1] != "" {
					return groups[1]
				}
				return groups[2]
			},
			"https://www.youtube.com/playlist?list=%s",
		),
		"YoutubeChannel": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/channel/([0-9A-Za-z_-]+)`),
			firstGroup,
			"https://www.youtube.com/channel/%s",
		),
		"YoutubeUser": New(
			// The /c/ vanity form resolves to a channel server-side and has no
			// 1:1 mapping to a user identity, so it matches but yields nothing.
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?youtube\.com/(user|c)/([0-9A-Za-z_-]+)`),
			func(groups []string) string {
				if groups[1] != "user" {
					return ""
				}
				return groups[2]
			},
			"https://www.youtube.com/user/%s",
		),
		"Dailymotion": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?dailymotion\.com/(?:embed/)?video/([a-z0-9]+)`),
			firstGroup,
			"https://www.dailymotion.com/video/%s",
		),
		"DailymotionUser": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?dailymotion\.com/(?:(?:old/)?user/)?([^/?#]+)/?$`),
			firstGroup,
			"https://www.dailymotion.com/user/%s",
		),
		"Vimeo": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?(?:player\.)?vimeo\.com/(?:video/)?(\d+)`),
			firstGroup,
			"https://vimeo.com/%s",
		),
		"VimeoChannel": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?vimeo\.com/channels/([^/?#]+)`),
			firstGroup,
			"https://vimeo.com/channels/%s",
		),
		"VimeoUser": New(
			regexp.MustCompile(`^(?:https?://)?(?:www\.)?vimeo\.com/([^/?#]+)/videos`),
			firstGroup,
			"https://vimeo.com/%s/videos",
		),
	}
}

func firstGroup(groups []string) string {
	return groups[1]
}
