package sources

import "fmt"

const testVideoID = "dQw4w9WgXcQ"

const okPlayerJSON = `{
  "playabilityStatus": {"status": "OK"},
  "videoDetails": {"videoId": "dQw4w9WgXcQ", "title": "Never Gonna {Give} You Up", "author": "Rick Astley"},
  "microformat": {"playerMicroformatRenderer": {"title": {"simpleText": "Micro Title"}, "ownerChannelName": "Micro Channel"}},
  "captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
    {"baseUrl": "/api/timedtext?v=dQw4w9WgXcQ&lang=en", "languageCode": "en", "kind": "asr", "name": {"simpleText": "English (auto-generated)"}},
    {"baseUrl": "/api/timedtext?v=dQw4w9WgXcQ&lang=es", "languageCode": "es", "name": {"runs": [{"text": "Span"}, {"text": "ish"}]}}
  ]}}
}`

const markupOnlyHTML = `<!DOCTYPE html>
<html><head>
<title>Markup Title - YouTube</title>
<meta name="title" content="Markup Title">
<meta property="og:title" content="OG Title">
</head><body>
<span itemprop="author"><link itemprop="name" content="Markup Channel"></span>
<script>var ytInitialData = {"contents": {}};</script>
</body></html>`

func watchPageHTML(playerJSON string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html><head><title>ignored - YouTube</title></head><body>
<script nonce="x">window["ytInitialPlayerResponse"] = null;</script>
<script nonce="x">var ytInitialPlayerResponse = %s;var meta = document.createElement('meta');</script>
</body></html>`, playerJSON)
}
