package menu

import (
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

// Element and attribute names read by the aggregator.
const (
	elemDish       = "dish"
	elemIngredient = "ingredient"
	elemReview     = "review"
	elemDay        = "day"

	attrType   = "type"
	attrPrice  = "price"
	attrRating = "rating"
	attrClosed = "closed"
)

// clockLayout is the 12-hour "hh:mm AM" form used in day elements.
const clockLayout = "03:04 PM"

// Aggregate walks the document and computes the menu statistics. Elements
// are matched by local name anywhere under (and including) the root, in
// document order.
func Aggregate(doc *etree.Document) (*model.Statistics, error) {
	root := doc.Root()
	if root == nil {
		return nil, newError(KindParse, StageAggregate, "", eris.New("menu: document has no root element"))
	}

	stats := &model.Statistics{}
	typeIndex := make(map[string]int)

	var walkErr error
	walk(root, func(e *etree.Element) bool {
		var err error
		switch e.Tag {
		case elemDish:
			err = addDish(stats, typeIndex, e)
		case elemReview:
			err = addReview(stats, e)
		case elemDay:
			err = addDay(stats, e)
		}
		if err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return stats, nil
}

// walk visits e and its descendant elements in preorder until fn returns
// false. It reports whether the walk ran to completion.
func walk(e *etree.Element, fn func(*etree.Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, child := range e.ChildElements() {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}

func addDish(stats *model.Statistics, typeIndex map[string]int, e *etree.Element) error {
	typ, err := requireAttr(e, attrType)
	if err != nil {
		return err
	}
	price, err := floatAttr(e, attrPrice)
	if err != nil {
		return err
	}

	i, ok := typeIndex[typ]
	if !ok {
		i = len(stats.DishTypes)
		typeIndex[typ] = i
		stats.DishTypes = append(stats.DishTypes, model.DishTypeStats{Type: typ})
	}
	stats.DishTypes[i].Sum += price
	stats.DishTypes[i].Count++
	stats.DishCount++

	stats.IngredientCount += countDescendants(e, elemIngredient)
	return nil
}

func addReview(stats *model.Statistics, e *etree.Element) error {
	rating, err := floatAttr(e, attrRating)
	if err != nil {
		return err
	}
	stats.RatingSum += rating
	stats.ReviewCount++
	return nil
}

func addDay(stats *model.Statistics, e *etree.Element) error {
	if attr := e.SelectAttr(attrClosed); attr != nil && attr.Value == "true" {
		return nil
	}

	hours, ok, err := OpenHours(textContent(e))
	if err != nil {
		return newError(KindData, StageAggregate, e.GetPath(), err)
	}
	if !ok {
		return nil
	}
	stats.TotalOpenHours += hours
	stats.OpenDays++
	return nil
}

// OpenHours parses a "hh:mm AM - hh:mm PM" range and returns its length in
// hours. ok is false when the text does not split into exactly two times;
// err is set when it does but either side is not a valid 12-hour time. A
// range that wraps past midnight yields a negative value.
func OpenHours(text string) (hours float64, ok bool, err error) {
	fields := splitRange(trimControl(text))
	if len(fields) != 2 {
		return 0, false, nil
	}

	start, err := secondOfDay(strings.TrimSpace(fields[0]))
	if err != nil {
		return 0, false, err
	}
	end, err := secondOfDay(strings.TrimSpace(fields[1]))
	if err != nil {
		return 0, false, err
	}
	return float64(end-start) / 3600, true, nil
}

// splitRange splits on '-' and drops trailing empty fields, so "a-b-" is two
// fields and "-" is none.
func splitRange(s string) []string {
	fields := strings.Split(s, "-")
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

// secondOfDay parses a 12-hour "hh:mm AM" time. A clock hour of 00 is
// accepted and read as 12, so "00:30 AM" is half past midnight.
func secondOfDay(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, eris.Wrapf(err, "menu: parse time %q", s)
	}
	return t.Hour()*3600 + t.Minute()*60, nil
}

// trimControl strips leading and trailing whitespace and control characters.
func trimControl(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}

// textContent concatenates all character data below e.
func textContent(e *etree.Element) string {
	var b strings.Builder
	var collect func(*etree.Element)
	collect = func(el *etree.Element) {
		for _, tok := range el.Child {
			switch t := tok.(type) {
			case *etree.CharData:
				b.WriteString(t.Data)
			case *etree.Element:
				collect(t)
			}
		}
	}
	collect(e)
	return b.String()
}

// countDescendants counts the elements named tag strictly below e.
func countDescendants(e *etree.Element, tag string) int {
	n := 0
	for _, child := range e.ChildElements() {
		walk(child, func(d *etree.Element) bool {
			if d.Tag == tag {
				n++
			}
			return true
		})
	}
	return n
}

func requireAttr(e *etree.Element, key string) (string, error) {
	attr := e.SelectAttr(key)
	if attr == nil {
		return "", newError(KindData, StageAggregate, e.GetPath(),
			eris.Errorf("menu: %s is missing attribute %q", e.Tag, key))
	}
	return attr.Value, nil
}

func floatAttr(e *etree.Element, key string) (float64, error) {
	raw, err := requireAttr(e, key)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, newError(KindData, StageAggregate, e.GetPath(),
			eris.Wrapf(err, "menu: %s attribute %q", e.Tag, key))
	}
	return v, nil
}
