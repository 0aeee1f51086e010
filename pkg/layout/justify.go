package layout

import (
	"github.com/tstromberg/photowall/pkg/photo"
)

// BuildGroup returns the header row for group g followed by its photo rows,
// justified to width. Every row but the last fills width exactly.
func BuildGroup(g int, grp photo.Group, width float64, c Config) []Row {
	rows := []Row{headerRow(g, grp.Header, c)}
	if !Ready(width) {
		return rows
	}

	t := c.TargetHeight(width)
	var buf []*photo.Item
	sum := 0.0

	flush := func() {
		h := (width - c.Gap*float64(len(buf)-1)) / sum
		rows = append(rows, photoRow(g, buf, h, c.Gap, false))
		buf = nil
		sum = 0
	}

	for _, i := range grp.Items {
		// Another gap would leave no room for content.
		if len(buf) > 0 && width-c.Gap*float64(len(buf)) <= 0 {
			flush()
		}

		buf = append(buf, i)
		sum += i.Aspect()

		if sum*t >= width-c.Gap*float64(len(buf)-1) {
			flush()
		}
	}

	if len(buf) > 0 {
		rows = append(rows, trailingRow(g, buf, sum, width, t, c))
	}
	return rows
}

// trailingRow sizes the leftover items of a group without stretching them.
func trailingRow(g int, is []*photo.Item, sum float64, width float64, t float64, c Config) Row {
	p := c.Partial
	mobile := c.Mobile(width)

	switch {
	case len(is) == 1 && !mobile:
		return photoRow(g, is, min(p.SingleMax, t*p.SingleScale), c.Gap, true)

	case len(is) == 1 && is[0].Aspect() > p.LandscapeAspect:
		fill := width / is[0].Aspect()
		if fill <= p.LandscapeMax {
			return photoRow(g, is, fill, c.Gap, false)
		}
		return photoRow(g, is, p.LandscapeMax, c.Gap, true)

	case len(is) == 1:
		return photoRow(g, is, min(p.PortraitMax, t*p.PortraitScale), c.Gap, true)

	case len(is) == 2 && !mobile:
		return photoRow(g, is, min(p.PairMax, t*p.PairScale), c.Gap, true)
	}

	fill := (width - c.Gap*float64(len(is)-1)) / sum
	return photoRow(g, is, min(t*p.TrailScale, fill), c.Gap, true)
}
