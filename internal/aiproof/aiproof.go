// Package aiproof is the optional AI deep-proofread stage. It sends the
// document's paragraphs, in chunks, to an OpenAI-compatible model and maps
// the model's strict-JSON findings onto the pipeline's issue type. The stage
// is additive: when the model is unreachable or returns garbage the pipeline
// continues with the rule-based findings only.
package aiproof

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/planbureau/planproof/internal/docmodel"
	"github.com/planbureau/planproof/internal/issue"
	"github.com/planbureau/planproof/internal/llm"
)

// chunkCharLimit bounds the body characters per request so long documents
// keep the model's attention per paragraph. A single oversized paragraph is
// sent alone rather than split.
const chunkCharLimit = 4000

const systemPrompt = `你是一位严苛的中文文字编校专家，专门审校城市规划文件。逐段核对错别字、标点规范、数字逻辑、术语规范和语法问题。
输出严格 JSON，不附加任何解释性文字：
{"summary": "一句话总结本块主要问题", "issues": [{"para_index": 5, "comment": "问题描述与修改建议", "severity": "error", "matched": "原文片段"}]}
severity 取值 error / warning / suggestion。para_index 使用摘录中给出的 [编号]；无法定位时填 -1。每条必须有 matched 字段。`

// Proofreader drives the deep-proofread stage.
type Proofreader struct {
	Client llm.Client
	Model  string
}

type aiFinding struct {
	ParaIndex int    `json:"para_index"`
	Comment   string `json:"comment"`
	Severity  string `json:"severity"`
	Matched   string `json:"matched"`
}

type aiResponse struct {
	Summary string      `json:"summary"`
	Issues  []aiFinding `json:"issues"`
}

// Run proofreads the document and returns the model's findings plus a short
// overall assessment. Chunk failures are logged and skipped so one bad
// response cannot sink the rest of the document.
func (p *Proofreader) Run(ctx context.Context, doc *docmodel.Document) ([]issue.Issue, string, error) {
	chunks := chunkParagraphs(doc.Paragraphs, chunkCharLimit)

	var issues []issue.Issue
	var summaries []string
	for ci, chunk := range chunks {
		resp, err := p.proofreadChunk(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			log.Warn().Err(err).Int("chunk", ci).Msg("deep proofread chunk failed; skipping")
			continue
		}
		if s := strings.TrimSpace(resp.Summary); s != "" {
			summaries = append(summaries, s)
		}
		for _, f := range resp.Issues {
			issues = append(issues, toIssue(doc, f))
		}
	}
	return issues, strings.Join(summaries, " "), nil
}

func (p *Proofreader) proofreadChunk(ctx context.Context, chunk []docmodel.Paragraph) (*aiResponse, error) {
	var b strings.Builder
	b.WriteString("请校对以下文档摘录，段落以 [编号] 标注：\n\n")
	for _, para := range chunk {
		fmt.Fprintf(&b, "[%d] %s\n", para.Index, para.Text)
	}

	resp, err := p.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.Model,
		Temperature: 0.2,
		MaxTokens:   4096,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: b.String()},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion")
	}
	return parseResponse(resp.Choices[0].Message.Content)
}

// parseResponse decodes the strict-JSON contract, tolerating a fenced code
// block around the object.
func parseResponse(raw string) (*aiResponse, error) {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, "}"); i >= 0 {
		s = s[:i+1]
	}
	var out aiResponse
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, fmt.Errorf("unparseable model response: %w", err)
	}
	return &out, nil
}

// categoryKeywords maps category words the model tends to use in its
// comments onto issue categories. Checked in order; first hit wins.
var categoryKeywords = []struct {
	word string
	cat  issue.Category
}{
	{"数值", issue.CategoryNumeric},
	{"数据不一致", issue.CategoryNumeric},
	{"术语", issue.CategoryTerminology},
	{"提法", issue.CategoryTerminology},
	{"格式", issue.CategoryFormat},
	{"标点", issue.CategoryFormat},
	{"用地代码", issue.CategoryLandCode},
	{"缺少", issue.CategoryCompleteness},
	{"遗漏", issue.CategoryCompleteness},
}

func categoryFor(comment string) issue.Category {
	for _, kw := range categoryKeywords {
		if strings.Contains(comment, kw.word) {
			return kw.cat
		}
	}
	return issue.CategoryTypo
}

func toIssue(doc *docmodel.Document, f aiFinding) issue.Issue {
	sev := issue.Severity(f.Severity)
	if !sev.Valid() {
		sev = issue.SeverityWarning
	}
	msg := strings.TrimSpace(f.Comment)
	cat := categoryFor(msg)
	var evidence []string
	if f.Matched != "" {
		evidence = []string{f.Matched}
	}
	if f.ParaIndex < 0 || !doc.HasParagraph(f.ParaIndex) {
		return issue.Unlocated(sev, cat, msg, evidence...)
	}
	return issue.At(f.ParaIndex, sev, cat, msg, evidence...)
}

// chunkParagraphs groups paragraphs into runs whose combined text stays
// under limit characters.
func chunkParagraphs(paras []docmodel.Paragraph, limit int) [][]docmodel.Paragraph {
	var chunks [][]docmodel.Paragraph
	var current []docmodel.Paragraph
	size := 0
	for _, p := range paras {
		n := len([]rune(p.Text))
		if size > 0 && size+n > limit {
			chunks = append(chunks, current)
			current = nil
			size = 0
		}
		current = append(current, p)
		size += n
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}
