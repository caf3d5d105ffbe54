package update

import "strings"

// StableChannel is the band preferred by SelectBand.
const StableChannel = "stable"

// Band is one release channel advertised by the manifest.
type Band struct {
	ChannelID     string
	LatestVersion Version
	// DownloadURL is empty when the band has no link. It is not validated.
	DownloadURL string
}

// SelectBand returns the first band whose channel is exactly "stable", or
// the first band when there is none. bands must not be empty.
func SelectBand(bands []Band) Band {
	for _, b := range bands {
		if b.ChannelID == StableChannel {
			return b
		}
	}
	return bands[0]
}

// AvailableVersionInfo is the release found by the last check. Its download
// link, when present, always uses http or https.
type AvailableVersionInfo struct {
	Version     Version
	downloadURL string
}

// NewAvailableVersionInfo builds the info for a selected band. A download
// link that does not start with "http://" or "https://" is dropped.
func NewAvailableVersionInfo(b Band) AvailableVersionInfo {
	info := AvailableVersionInfo{Version: b.LatestVersion}
	if isWebURL(b.DownloadURL) {
		info.downloadURL = b.DownloadURL
	}
	return info
}

// DownloadURL returns the validated download link and whether one exists.
func (i AvailableVersionInfo) DownloadURL() (string, bool) {
	return i.downloadURL, i.downloadURL != ""
}

func isWebURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
