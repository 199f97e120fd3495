package agent

import (
	"context"
	"strings"

	"google.golang.org/genai"

	"github.com/quantegy/pnl"
	"github.com/quantegy/pnl/renderer"
)

const model = "gemini-2.5-pro"

// NewAnalyst builds the expert that answers questions about one finished
// run. It reads the result through function calls, never from a transcript,
// so figures quoted to the user come from the engine verbatim.
func NewAnalyst(res *pnl.Result, opts renderer.Options) *Expert {
	lib := []Function{
		reportFunc(res, opts),
		positionsFunc(res, opts),
		timeseriesFunc(res),
	}

	return &Expert{
		Name: "Analyst",
		Description: `This is the PnL analyst. It has access to the full result of
		the last engine run: the per-fill timeseries, the final positions and the
		headline trade metrics.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a trading PnL analyst. The user just ran a profit-and-loss
				calculation over an order log and wants to understand the outcome.

				Use the available tools to read the actual figures before answering:
				  - Report for realized, unrealized and gross totals and trade metrics
				  - Positions for the open lots per symbol
				  - Timeseries for the per-fill evolution

				Quote amounts exactly as the tools return them, they are exact
				decimals. Never recompute or round them yourself.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// Func implements a simple Function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }
func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	return f.Func(ctx, id, args)
}

func textResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{
		ID:   id,
		Name: name,
		Response: map[string]any{
			"output": output,
		},
	}
}

func reportFunc(res *pnl.Result, opts renderer.Options) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Report",
			Description: `Report renders the run's PnL report: total gross PnL, the
			per-symbol breakdown and the trade metrics (win rate, average trade
			realized PnL, profit factor).`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted PnL report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return textResponse(id, "Report", renderer.Report(res, opts))
		},
	}
}

func positionsFunc(res *pnl.Result, opts renderer.Options) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Positions",
			Description: `Positions lists the final position per symbol: net, long
			and short quantities, last trade price and average open prices.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of final positions.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			return textResponse(id, "Positions", renderer.Positions(res, opts))
		},
	}
}

func timeseriesFunc(res *pnl.Result) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Timeseries",
			Description: `Timeseries returns the run's full per-fill timeseries in
			CSV, one row per processed event, timestamps in nanoseconds, amounts
			as exact decimal strings.`,
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The timeseries in CSV.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			var sb strings.Builder
			if err := res.WriteCSV(&sb); err != nil {
				return &genai.FunctionResponse{
					ID:   id,
					Name: "Timeseries",
					Response: map[string]any{
						"error": err.Error(),
					},
				}
			}
			return textResponse(id, "Timeseries", sb.String())
		},
	}
}
