package app

import (
	"github.com/ironsheep/memezap/internal/index"
	"github.com/ironsheep/memezap/internal/ocr"
)

// Info summarizes the configured pipeline for diagnostics.
type Info struct {
	OCR       ocr.Info    `json:"ocr"`
	Extractor string      `json:"extractor"`
	Dimension int         `json:"dimension"`
	Index     index.Stats `json:"index"`
	Cache     string      `json:"cache"`
	Font      string      `json:"font"`
	Inpaint   string      `json:"inpaint"`
	Suggest   bool        `json:"suggest"`
	Templates int         `json:"cached_templates"`
}

// Info builds the OCR engine and extractor if needed and reports their
// state along with the index and cache configuration.
func (s *Services) Info() Info {
	info := Info{
		Index:     s.Index.Stats(),
		Cache:     s.Config.Cache.Backend,
		Font:      s.Renderer.Font().Name(),
		Inpaint:   string(s.Remover.Strategy()),
		Suggest:   s.Config.Suggest.Enabled,
		Templates: s.Templates.Len(),
	}

	engine, err := s.Engine()
	switch e := engine.(type) {
	case nil:
		info.OCR = ocr.Info{Engine: s.Config.OCR.Engine}
		if err != nil {
			info.OCR.Error = err.Error()
		}
	case *ocr.Tesseract:
		info.OCR = e.Info()
	default:
		info.OCR = ocr.Info{Engine: e.Name(), Available: true}
	}

	if x, err := s.Extractor(); err == nil {
		info.Extractor = x.Name()
		info.Dimension = x.Dimension()
	} else {
		info.Extractor = s.Config.Embedding.Provider + " (" + err.Error() + ")"
	}
	if info.Dimension == 0 {
		info.Dimension = s.Index.Dim()
	}
	return info
}
