package mcp12306

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var toolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mcp_tool_calls_total",
	Help: "Tool invocations by tool name and outcome.",
}, []string{"tool", "outcome"})

func observeToolCall(tool string, isError bool) {
	outcome := "ok"
	if isError {
		outcome = "error"
	}
	toolCalls.WithLabelValues(tool, outcome).Inc()
}
