package sources

import "strings"

// YouTube wire types: the player response embedded in the watch page and the
// two caption payload shapes served by the timedtext endpoint.

// --- Player response (ytInitialPlayerResponse) ---

// PlayerResponse is the subset of the embedded player response we read.
type PlayerResponse struct {
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
		Author  string `json:"author"`
	} `json:"videoDetails"`
	Microformat *struct {
		PlayerMicroformatRenderer struct {
			Title            textRuns `json:"title"`
			OwnerChannelName string   `json:"ownerChannelName"`
		} `json:"playerMicroformatRenderer"`
	} `json:"microformat"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *playabilityStatus `json:"playabilityStatus"`
}

type playabilityStatus struct {
	Status string `json:"status"` // "OK", "ERROR", "LOGIN_REQUIRED", "UNPLAYABLE"
	Reason string `json:"reason"`
}

type captionTrack struct {
	BaseURL      string   `json:"baseUrl"`
	LanguageCode string   `json:"languageCode"`
	Kind         string   `json:"kind"` // "asr" = auto-generated
	Name         textRuns `json:"name"`
}

// textRuns is either {"simpleText": "..."} or {"runs": [{"text": "..."}]}.
type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var sb strings.Builder
	for _, r := range t.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// --- Timedtext XML types ---

// ytTimedText covers both <transcript><text start dur> and srv3
// <timedtext><body><p t d><s>. The root element name is not checked.
type ytTimedText struct {
	Lines []ytLine `xml:"text"`
	Body  struct {
		Paras []ytPara `xml:"p"`
	} `xml:"body"`
}

// Timing attributes stay strings so one malformed value costs only that cue's timing.
type ytLine struct {
	Start string `xml:"start,attr"` // seconds
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type ytPara struct {
	T    string `xml:"t,attr"` // milliseconds
	D    string `xml:"d,attr"`
	Text string `xml:",chardata"`
	Segs []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

// --- json3 event list ---

type ytJSON3 struct {
	Events []ytEvent `json:"events"`
}

type ytEvent struct {
	TStartMs    int64 `json:"tStartMs"`
	DDurationMs int64 `json:"dDurationMs"`
	Segs        []struct {
		UTF8 string `json:"utf8"`
	} `json:"segs"`
}
