package caldav

import (
	"encoding/xml"

	log "github.com/sirupsen/logrus"

	"github.com/alarmo/alarmo/pkg/calendar"
	"github.com/alarmo/alarmo/pkg/ics"
)

// multistatus mirrors the DAV:multistatus tree of a calendar-query
// REPORT response. Only the pieces needed to reach the embedded
// calendar-data blobs are mapped.
type multistatus struct {
	XMLName   xml.Name   `xml:"DAV: multistatus"`
	Responses []response `xml:"DAV: response"`
}

type response struct {
	Href      string     `xml:"DAV: href"`
	Propstats []propstat `xml:"DAV: propstat"`
}

type propstat struct {
	Status string `xml:"DAV: status"`
	Prop   prop   `xml:"DAV: prop"`
}

type prop struct {
	CalendarData string `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

// ParseReport walks a CalDAV REPORT multistatus response and parses
// every embedded calendar-data blob into normalized events. Responses
// without calendar data are skipped; a blob that fails to parse drops
// only that blob.
func ParseReport(body []byte) ([]calendar.Event, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, calendar.NewPermanentError(calendar.ErrCodeBadResponse, "unable to parse CalDAV multistatus response", err)
	}

	events := make([]calendar.Event, 0)
	for _, resp := range ms.Responses {
		for _, ps := range resp.Propstats {
			if ps.Prop.CalendarData == "" {
				continue
			}
			parsed, err := ics.ParseEvents([]byte(ps.Prop.CalendarData))
			if err != nil {
				log.Warnf("skipping unparseable calendar-data blob for %s: %v", resp.Href, err)
				continue
			}
			events = append(events, parsed...)
		}
	}
	return events, nil
}
