package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/dejargonator/dejargonator/internal/apperrors"
)

// Tones and personas select which prompt variant produces a critique. They
// are cosmetic metadata on the stored record; unknown values fall back to
// the defaults below.
const (
	DefaultTone    = "professional"
	DefaultPersona = "friendly-mentor"
)

var toneInstructions = map[string]string{
	"snarky":       "Be witty, sarcastic, and brutally honest. Point out red flags and unrealistic expectations.",
	"professional": "Be balanced, constructive, and professional. Provide objective analysis.",
	"formal":       "Be formal, structured, and diplomatic. Use professional language throughout.",
}

var personaInstructions = map[string]string{
	"brutally-honest":      "Act as a no-nonsense career coach who tells it like it is.",
	"friendly-mentor":      "Act as a supportive mentor who provides encouraging guidance.",
	"hr-insider":           "Act as an HR professional with insider knowledge of hiring practices.",
	"corporate-translator": "Act as a neutral translator who decodes corporate jargon objectively.",
}

// Document types for GenerateDocument.
const (
	DocTypeResume      = "resume"
	DocTypeCoverLetter = "cover-letter"
)

type LLMService struct {
	Client llms.Model
	logger *zap.Logger
}

// NewLLMService initializes the Gemini client once; every request reuses it.
func NewLLMService(apiKey, model string, logger *zap.Logger) (*LLMService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is empty")
	}

	ctx := context.Background()
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &LLMService{Client: llm, logger: logger}, nil
}

// AnalyzeJob runs the Dejargonator critique prompt over a job description
// and returns the structured analysis text.
func (s *LLMService) AnalyzeJob(ctx context.Context, description, tone, persona string) (string, error) {
	prompt := BuildAnalysisPrompt(description, tone, persona)

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		s.logger.Error("analysis generation failed", zap.Error(err))
		return "", apperrors.Unavailable("analysis service unavailable", err)
	}
	return resp, nil
}

// GenerateDocument produces a tailored resume or cover letter from the job
// description, the user's own material, and (optionally) a prior analysis.
func (s *LLMService) GenerateDocument(ctx context.Context, docType, description, userInput, analysis string) (string, error) {
	var prompt string
	switch docType {
	case DocTypeResume:
		prompt = buildResumePrompt(description, userInput, analysis)
	case DocTypeCoverLetter:
		prompt = buildCoverLetterPrompt(description, userInput, analysis)
	default:
		return "", apperrors.InvalidInput(`type must be "resume" or "cover-letter"`, nil)
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		s.logger.Error("document generation failed", zap.String("type", docType), zap.Error(err))
		return "", apperrors.Unavailable("document service unavailable", err)
	}
	return resp, nil
}

// BuildAnalysisPrompt assembles the critique prompt. Unknown tones and
// personas get the defaults rather than erroring, matching the persisted
// records which treat both as free-form labels.
func BuildAnalysisPrompt(description, tone, persona string) string {
	toneText, ok := toneInstructions[tone]
	if !ok {
		toneText = toneInstructions[DefaultTone]
	}
	personaText, ok := personaInstructions[persona]
	if !ok {
		personaText = personaInstructions[DefaultPersona]
	}

	return fmt.Sprintf(`You are the "Job Dejargonator," an expert career coach and linguistic analyst. Your role is to critically examine corporate jargon in a job description and translate it into clear, actionable sections.

%s %s

Your output must strictly follow this format:

**What They Really Mean (The Translation):**
For 5-7 distinct pieces of jargon or vague corporate language found in the job description, provide a short, clear, plain-language translation of what the company is actually looking for in terms of skills, duties, or mindset. Use bullet points.

Format each bullet as:
• "Jargon phrase from job description" → Plain language translation explaining what they really want

**Action Plan: How to Tailor Your Resume:**
Provide 3-4 specific, concrete, and measurable instructions on how the applicant should rewrite their resume to directly address the translated needs and language of the job description. Focus on using action verbs, quantification, and alignment.

Each instruction should:
- Specify which resume section to update (Summary, Skills, Experience)
- Include specific keywords or phrases to add
- Show how to quantify achievements with numbers/percentages
- Give concrete examples

**Salary Expectations:**
Provide a realistic salary range based on the requirements, seniority level, and market rates.
Format: $XX,XXX - $XX,XXX with brief justification

**Red Flags:**
List 2-4 warning signs or unrealistic expectations found in the job description. Be specific about what's concerning and why.

**Bottom Line:**
Should you apply or run? Provide final advice in one paragraph.

---

Job Description:
%s

Provide a clear, structured analysis following the format above:`, personaText, toneText, description)
}

func buildResumePrompt(description, currentResume, analysis string) string {
	insights := ""
	if analysis != "" {
		insights = fmt.Sprintf("**JOB ANALYSIS INSIGHTS:**\n%s\n", extractKeyInsights(analysis))
	}

	return fmt.Sprintf(`
You are tasked with creating an ATS-optimized, tailored resume for the following job posting.

**JOB DESCRIPTION:**
%s

**CANDIDATE'S CURRENT RESUME:**
%s

%s**YOUR TASK:**
Create a tailored version of the candidate's resume that:
1. Maintains all factual information (don't invent experience)
2. Rewords descriptions to match job keywords naturally
3. Emphasizes relevant skills and achievements
4. Uses strong action verbs (Led, Developed, Implemented, etc.)
5. Includes quantifiable results where possible
6. Is ATS-friendly (simple formatting, no graphics)
7. Prioritizes most relevant experience

**FORMAT:**
Return ONLY the resume text in this structure:
- Professional Summary (2-3 sentences highlighting relevant experience)
- Core Skills (bullet points of relevant technical/soft skills)
- Professional Experience (reverse chronological, with bullet achievements)
- Education
- Optional: Certifications, Awards, or Projects if relevant

Do not include any meta-commentary. Start directly with the resume content.
`, description, currentResume, insights)
}

func buildCoverLetterPrompt(description, experienceSummary, analysis string) string {
	insights := ""
	if analysis != "" {
		insights = fmt.Sprintf("**JOB ANALYSIS INSIGHTS:**\n%s\n", extractKeyInsights(analysis))
	}

	return fmt.Sprintf(`
You are tasked with writing a compelling, professional cover letter for the following job posting.

**JOB DESCRIPTION:**
%s

**CANDIDATE'S BACKGROUND:**
%s

%s**YOUR TASK:**
Write a tailored cover letter (3-4 paragraphs) that:
1. Opens with enthusiasm and mentions the specific role
2. Highlights 2-3 relevant achievements that match job requirements
3. Demonstrates knowledge of the company/role (based on job description)
4. Shows personality while remaining professional
5. Closes with a strong call to action

**FORMAT:**
Return ONLY the cover letter text in standard business letter format:
- Opening paragraph (express interest)
- 1-2 body paragraphs (relevant experience and skills)
- Closing paragraph (call to action)
- Professional sign-off

Use [Your Name], [Your Email], and [Your Phone] as placeholders for contact info.

Do not include "Dear Hiring Manager" or address - start directly with the opening paragraph.
Do not include any meta-commentary.
`, description, experienceSummary, insights)
}

// extractKeyInsights pulls the headline sections out of a prior analysis so
// document prompts stay under a usable size.
func extractKeyInsights(analysis string) string {
	sections := []string{"What They Really Mean", "Action Plan", "Red Flags"}
	var insights strings.Builder

	for _, section := range sections {
		idx := strings.Index(analysis, section)
		if idx == -1 {
			continue
		}
		chunk := analysis[idx:]
		if len(chunk) > 300 {
			chunk = chunk[:300]
		}
		insights.WriteString(chunk)
		insights.WriteString("\n\n")
	}

	if insights.Len() == 0 {
		return "No additional insights available."
	}
	return insights.String()
}
