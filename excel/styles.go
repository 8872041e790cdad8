package excel

import (
	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"
)

func highlight() *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FFFF50"},
			Pattern: 1,
		},
	}
}

func textAlignment(a string) *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: a,
		},
	}
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}
