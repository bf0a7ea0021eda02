//go:build !prod

package trialplot

import (
	"embed"

	"github.com/sirupsen/logrus"
)

// Without the prod tag the viewer page is not embedded, so / answers 404 and
// only /ws, /metadata and /figures/ are served.
var webuiFiles embed.FS

func openBrowser(url string) {
	logrus.WithField("url", url).Info("dev build, not opening a browser")
}
