package provider

// Item is the normalized form of one listing entry. The extraction tool
// returns context-sensitive key/value records whose field names vary with the
// call path and tool release; Normalize reduces them to this record once, at
// the boundary, so nothing else inspects loose maps.
type Item struct {
	// Key is the internal extractor key responsible for the item.
	Key string
	// Data is the stable identity payload, typically a provider video id.
	Data string
	// URL is the display URL used for download calls and logging. May be
	// empty for flat entries; callers fall back to converter output.
	URL string
	// Title is advisory metadata for logs and listings.
	Title string
}

// Listing is the result of one provider listing call.
type Listing struct {
	Items []Item
	// Skipped holds one reason per entry that could not be classified.
	// Entries are skipped, never dropped silently.
	Skipped []string
}

// MatchFilter vetoes a download. A non-empty return is the skip reason;
// empty means proceed.
type MatchFilter func(Item) string

// Normalize reduces a raw listing entry to an Item. Field precedence for the
// extractor: the internal ie_key or extractor_key fields when present, else
// the public extractor name resolved through byName. Entries with no
// resolvable extractor or no id are unclassifiable.
func Normalize(entry map[string]any, byName map[string]string) (Item, error) {
	key := stringField(entry, "ie_key")
	if key == "" {
		key = stringField(entry, "extractor_key")
	}
	if key == "" {
		if name := stringField(entry, "extractor"); name != "" {
			key = byName[name]
		}
	}
	if key == "" {
		return Item{}, &UnclassifiableError{Entry: entry, Reason: "no extractor field"}
	}

	data := stringField(entry, "id")
	if data == "" {
		return Item{}, &UnclassifiableError{Entry: entry, Reason: "no id field"}
	}

	url := stringField(entry, "webpage_url")
	if url == "" {
		url = stringField(entry, "url")
	}

	return Item{
		Key:   key,
		Data:  data,
		URL:   url,
		Title: stringField(entry, "title"),
	}, nil
}

func stringField(entry map[string]any, key string) string {
	value, ok := entry[key]
	if !ok {
		return ""
	}
	s, ok := value.(string)
	if !ok {
		return ""
	}
	return s
}
