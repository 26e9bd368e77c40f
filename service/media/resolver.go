package media

import (
	"path"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

const hostMarker = "cloudinary.com"

var versionSegment = regexp.MustCompile(`^v\d+$`)

// ResolveIdentifier picks the public id to delete. An explicit publicID
// always wins; otherwise the id is derived from the delivery URL. The second
// return value is the cloud (account) name when the URL carries one, so the
// handler can refuse URLs pointing at a different Cloudinary account.
//
// Recognised URL shapes:
//
//	https://res.cloudinary.com/<cloud>/image/upload/v123/folder/name.png
//	https://res.cloudinary.com/<cloud>/image/upload/w_500,c_fill/v123/name.jpg
//
// A string without the cloudinary.com marker is used as the public id as-is.
// Malformed input never panics; it resolves to empty strings and is logged.
func ResolveIdentifier(publicID, rawURL string) (string, string) {
	if publicID != "" {
		return publicID, ""
	}
	if rawURL == "" {
		return "", ""
	}

	idx := strings.Index(rawURL, hostMarker)
	if idx < 0 {
		return rawURL, ""
	}

	rest := strings.Trim(rawURL[idx+len(hostMarker):], "/")
	segments := strings.Split(rest, "/")
	if len(segments) == 0 || segments[0] == "" {
		logrus.WithField("url", rawURL).Warn("cloudinary URL has no cloud name segment")
		return "", ""
	}
	cloudName := segments[0]

	uploadIdx := -1
	for i, seg := range segments {
		if seg == "upload" {
			uploadIdx = i
			break
		}
	}
	if uploadIdx < 0 || uploadIdx == len(segments)-1 {
		logrus.WithField("url", rawURL).Warn("cloudinary URL has no upload path")
		return "", ""
	}

	// Everything after /upload/ is transformations, an optional v<digits>
	// version marker, then the public id path. The id starts after the
	// version marker when one exists.
	after := segments[uploadIdx+1:]
	versioned := false
	for i, seg := range after {
		if versionSegment.MatchString(seg) {
			after = after[i+1:]
			versioned = true
			break
		}
	}
	if !versioned {
		// no version marker; drop leading transformation segments, which
		// are comma-joined parameter lists like w_500,c_fill
		for len(after) > 0 && strings.Contains(after[0], ",") {
			after = after[1:]
		}
	}

	id := strings.Join(after, "/")
	if ext := path.Ext(id); ext != "" {
		id = strings.TrimSuffix(id, ext)
	}
	if id == "" {
		logrus.WithField("url", rawURL).Warn("could not extract public id from cloudinary URL")
		return "", ""
	}
	return id, cloudName
}
