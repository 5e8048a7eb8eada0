package menu

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/rotisserie/eris"

	"github.com/Alexander-P/DOM-XMLParsing/internal/model"
)

// Names of the elements and attributes written by AppendStatistics.
const (
	ElemStatistics       = "statistics"
	ElemAverageDishPrice = "averageDishPrice"
	ElemAverageRating    = "averageRating"
	ElemIngredientCount  = "ingredientCount"
	ElemTotalOpenHours   = "totalOpenHours"

	attrValue = "value"
)

// AppendStatistics adds a statistics element as the last child of the
// document root and returns it.
func AppendStatistics(doc *etree.Document, stats *model.Statistics) (*etree.Element, error) {
	root := doc.Root()
	if root == nil {
		return nil, newError(KindParse, StageMutate, "", eris.New("menu: document has no root element"))
	}
	if stats == nil {
		return nil, newError(KindData, StageMutate, root.GetPath(), eris.New("menu: no statistics to append"))
	}

	el := root.CreateElement(ElemStatistics)

	for _, d := range stats.DishTypes {
		avg := el.CreateElement(ElemAverageDishPrice)
		avg.CreateAttr(attrType, d.Type)
		avg.CreateAttr(attrValue, model.FormatDecimal(d.Average()))
	}

	el.CreateElement(ElemAverageRating).SetText(model.FormatDecimal(stats.AverageRating()))
	el.CreateElement(ElemIngredientCount).SetText(strconv.Itoa(stats.IngredientCount))
	el.CreateElement(ElemTotalOpenHours).SetText(model.FormatDecimal(stats.TotalOpenHours))

	return el, nil
}
