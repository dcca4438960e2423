package middleware

import (
	"net/http"

	"go-grocery/pkg/response"

	sentinel "github.com/alibaba/sentinel-golang/api"
	"github.com/alibaba/sentinel-golang/core/base"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ResAddToCart is the sentinel resource guarding POST add-to-cart.
const ResAddToCart = "add_to_cart"

// InitSentinel starts sentinel and loads a reject-over-qps rule per resource.
func InitSentinel(rules map[string]float64) error {
	if err := sentinel.InitDefault(); err != nil {
		return err
	}

	flowRules := make([]*flow.Rule, 0, len(rules))
	for resource, qps := range rules {
		flowRules = append(flowRules, &flow.Rule{
			Resource:               resource,
			TokenCalculateStrategy: flow.Direct, // 直接计数
			ControlBehavior:        flow.Reject, // 直接拒绝
			Threshold:              qps,
			StatIntervalInMs:       1000,
		})
	}
	if _, err := flow.LoadRules(flowRules); err != nil {
		return err
	}
	log.Info().Interface("rules", rules).Msg("sentinel flow rules loaded")
	return nil
}

// RateLimit rejects with 429 once resource is over its flow rule.
func RateLimit(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, b := sentinel.Entry(resource, sentinel.WithTrafficType(base.Inbound))
		if b != nil {
			// 被限流了
			response.Abort(c, http.StatusTooManyRequests, "Request was throttled.")
			return
		}
		defer e.Exit()

		c.Next()
	}
}
