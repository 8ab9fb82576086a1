package canopy

import (
	"strings"

	"github.com/tanema/gween/ease"
)

var easings = map[string]ease.TweenFunc{
	"linear":      ease.Linear,
	"ease":        ease.OutCubic,
	"ease-in":     ease.InQuad,
	"ease-out":    ease.OutQuad,
	"ease-in-out": ease.InOutQuad,

	"in-quad": ease.InQuad, "out-quad": ease.OutQuad, "in-out-quad": ease.InOutQuad,
	"in-cubic": ease.InCubic, "out-cubic": ease.OutCubic, "in-out-cubic": ease.InOutCubic,
	"in-quart": ease.InQuart, "out-quart": ease.OutQuart, "in-out-quart": ease.InOutQuart,
	"in-quint": ease.InQuint, "out-quint": ease.OutQuint, "in-out-quint": ease.InOutQuint,
	"in-sine": ease.InSine, "out-sine": ease.OutSine, "in-out-sine": ease.InOutSine,
	"in-expo": ease.InExpo, "out-expo": ease.OutExpo, "in-out-expo": ease.InOutExpo,
	"in-circ": ease.InCirc, "out-circ": ease.OutCirc, "in-out-circ": ease.InOutCirc,
	"in-elastic": ease.InElastic, "out-elastic": ease.OutElastic, "in-out-elastic": ease.InOutElastic,
	"in-back": ease.InBack, "out-back": ease.OutBack, "in-out-back": ease.InOutBack,
	"in-bounce": ease.InBounce, "out-bounce": ease.OutBounce, "in-out-bounce": ease.InOutBounce,
}

// LookupEasing returns the easing function registered under a CSS-style
// name ("linear", "ease-in-out", "out-bounce", ...).
func LookupEasing(name string) (ease.TweenFunc, bool) {
	fn, ok := easings[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}
