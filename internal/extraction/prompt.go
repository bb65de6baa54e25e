// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extraction

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// analysisPromptTmpl asks the model to read one paper and extract the
// structured material gap candidates are minted from.
var analysisPromptTmpl = template.Must(template.New("analysis").Funcs(promptFuncs).Parse(`You are an expert research analyst. Analyze the following academic paper and extract structured information used to identify genuine research gaps.

Extract:
- key_findings: concrete achievements and validated contributions, with quantified results when available
- methods: the technical approaches, algorithms, and frameworks employed
- limitations: explicit acknowledgments of unsolved problems, failed approaches, and scope constraints (what fails and under what conditions)
- future_work: specific research directions the authors recommend for addressing current limitations

Guidelines:
- Be specific and detailed, not generic. A good limitation reads like "fails to generalize to unseen object categories, achieving only 34% accuracy on novel classes", not "generalization could be improved".
- Each limitation must be specific enough to search the literature for solutions.
- Each future work item must be actionable and technically detailed. Avoid "further research needed".

Respond with a JSON object in this exact format and nothing else:
{"key_findings": ["..."], "methods": ["..."], "limitations": ["..."], "future_work": ["..."]}

Paper:
Title: {{.Title}}
{{if .Authors}}Authors: {{join .Authors ", "}}
{{end}}{{if .Domains}}Domains: {{join .Domains ", "}}
{{end}}Abstract: {{.Abstract}}
`))

// checkPromptTmpl asks the model whether one paper solves one gap.
var checkPromptTmpl = template.Must(template.New("check").Parse(`You are an expert research gap validator. Determine whether the paper below solves, addresses, or makes significant progress toward closing the research gap. Be reasonably aggressive in identifying solved gaps so that research effort concentrates on truly unsolved problems.

Research gap:
Category: {{.Gap.Category}}
Description: {{.Gap.Description}}

Paper:
Title: {{.Paper.Title}}
Abstract: {{.Paper.Abstract}}

Decision criteria:
- "solved": the paper directly addresses the exact problem with a working, validated solution; quantitative evidence shows the gap is closed or significantly narrowed.
- "partially_addressed": substantial progress, but aspects of the gap remain open in scope, performance, or applicability.
- "not_addressed": related field, but the paper does not tackle this specific gap or provides no solution.

Respond with a JSON object in this exact format and nothing else:
{"verdict": "solved|partially_addressed|not_addressed", "elimination_confidence": 0-100, "reinforcement_confidence": 0-100, "reason": "evidence-based explanation"}

elimination_confidence is how confident you are that the gap has been solved by this paper. reinforcement_confidence is how confident you are that the gap remains open despite this paper. State key evidence and quantitative results in the reason.
`))

// queriesPromptTmpl asks for solution-seeking search queries.
var queriesPromptTmpl = template.Must(template.New("queries").Parse(`You are helping validate whether a research gap has already been solved. Propose 3 literature search queries that would surface papers solving or substantially addressing this gap. Queries should be solution-seeking (e.g. "solution to X", "overcoming X"), concise, and specific to the gap's technical content.

Research gap:
Category: {{.Category}}
Description: {{.Description}}

Respond with a JSON object in this exact format and nothing else:
{"queries": ["...", "...", "..."]}
`))

var promptFuncs = template.FuncMap{"join": strings.Join}

func renderAnalysisPrompt(paper types.Paper) (string, error) {
	var buf bytes.Buffer
	if err := analysisPromptTmpl.Execute(&buf, paper); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderCheckPrompt(gap types.GapCandidate, paper types.Paper) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Gap   types.GapCandidate
		Paper types.Paper
	}{Gap: gap, Paper: paper}
	if err := checkPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderQueriesPrompt(gap types.GapCandidate) (string, error) {
	var buf bytes.Buffer
	if err := queriesPromptTmpl.Execute(&buf, gap); err != nil {
		return "", err
	}
	return buf.String(), nil
}
