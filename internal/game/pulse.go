/*
Package game
File: pulse.go
Description:
    The alert heartbeat.

    Every pulse recomputes the HQ and LQ spawn-vs-inventory findings for the
    union of all favorites. The result is fingerprinted with BLAKE3; only a
    changed fingerprint is reported, so idle clients are not flooded with
    identical broadcasts.
*/

package game

import (
	"encoding/json"

	"github.com/everforgeworks/galaxies-resource-alerts/internal/alert"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/resource"
	"github.com/everforgeworks/galaxies-resource-alerts/internal/store"
)

// Triplets compares spawning against inventory for every tracked schematic.
func (s *Session) Triplets(hq, great bool) ([]alert.Triplet, error) {
	return s.triplets(s.current(), hq, great)
}

func (s *Session) triplets(v snapshot, hq, great bool) ([]alert.Triplet, error) {
	schems, missing := v.catalog.Resolve(s.assignees.AllFavorites())
	if len(missing) > 0 {
		s.ErrorLog.Printf("PULSE: favorites without a schematic: %v", missing)
	}
	return v.engine.TripletsFor(hq, great, schems, v.inventory)
}

// Alerts is Triplets rendered as views.
func (s *Session) Alerts(hq, great bool) ([]AlertView, error) {
	return s.alerts(s.current(), hq, great)
}

func (s *Session) alerts(v snapshot, hq, great bool) ([]AlertView, error) {
	ts, err := s.triplets(v, hq, great)
	if err != nil {
		return nil, err
	}
	out := make([]AlertView, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewAlertView(v.catalog.Tree, v.cfg.Alerts.Floors, t))
	}
	return out, nil
}

// Pulse recomputes every finding. changed is false when the result is
// identical to the one returned by the previous pulse.
func (s *Session) Pulse() (report PulseReport, changed bool, err error) {
	v := s.current()
	hq, err := s.alerts(v, true, false)
	if err != nil {
		return report, false, err
	}
	lq, err := s.alerts(v, false, false)
	if err != nil {
		return report, false, err
	}

	report = PulseReport{Galaxy: v.galaxy, HQ: hq, LQ: lq}
	raw, err := json.Marshal(report)
	if err != nil {
		return report, false, err
	}
	report.Fingerprint = store.Fingerprint(raw)

	s.pulseMu.Lock()
	changed = report.Fingerprint != s.lastFingerprint
	s.lastFingerprint = report.Fingerprint
	s.pulseMu.Unlock()

	if changed {
		s.InfoLog.Printf("PULSE: %d HQ and %d LQ alerts (%s)", len(hq), len(lq), report.Fingerprint[:12])
	}
	return report, changed, nil
}

// Grade labels rate with the configured floors.
func (s *Session) Grade(rate float64) string {
	s.mu.RLock()
	floors := s.cfg.Alerts.Floors
	s.mu.RUnlock()
	return resource.GradeLabel(resource.GradeFor(rate, floors))
}
