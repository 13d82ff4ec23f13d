package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/chatvault/core"
)

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {
            "type": "string"
          },
          "value": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["type", "value"],
        "additionalProperties": false
      }
    }
  },
  "required": ["entities"],
  "additionalProperties": false
}`

const extractionPromptTemplate = `Extract named entities from the given chat transcript and return them as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The type field must match exactly one of: %s.
- PERSON is a person's name mentioned in the conversation (not the message author prefix).
- ADDRESS is a street address or property reference, e.g. "156 Seymour Street" or "88 Main".
- DEAL is a named transaction or negotiation, e.g. "the Hendricks closing".
- COMPANY is a business or organization name.
- LISTING_ID is a listing or MLS reference, e.g. "MLS 88123" or "listing #4471".
- PRICE is a monetary amount, e.g. "$850,000" or "1.2M".
- DATE_REFERENCE is a date mention, absolute or relative, e.g. "March 14" or "next Friday".
- The value field must be the entity exactly as it appears in the transcript, trimmed.
- Confidence is a number from 0 to 1 reflecting how certain you are. Omit it if unsure.
- Include only entities that actually appear in the transcript. Do not hallucinate.
- If no entities can be identified, return "entities": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "mike: just got word, the offer on 156 Seymour came in at $850,000\nsara: nice, is that the Coldwell listing?"
Output:
{
  "entities": [
    {"type":"ADDRESS","value":"156 Seymour","confidence":0.9},
    {"type":"PRICE","value":"$850,000","confidence":0.95},
    {"type":"COMPANY","value":"Coldwell","confidence":0.8}
  ]
}

Example (nothing to extract):
Input: "dan: lunch?\npriya: sure, 10 min"
Output:
{
  "entities": []
}`

// buildExtractionPrompt creates the system prompt with entity type names embedded.
func buildExtractionPrompt() string {
	names := make([]string, 0, len(core.EntityTypes))
	for _, t := range core.EntityTypes {
		names = append(names, t.String())
	}
	return fmt.Sprintf(extractionPromptTemplate,
		extractionResponseSchema,
		strings.Join(names, ", "))
}

const answerPromptTemplate = `You are answering a question about a team's archived chat history. The relevant
conversation excerpts are provided below. Base your answer only on these excerpts; if they do not contain
the answer, say so plainly. Cite the channel and date when referring to a specific conversation.

Conversation excerpts:

%s`

const answerReasoningAddendum = `

Think through the excerpts step by step before answering: identify which conversations are relevant,
how they relate to each other over time, and what patterns or contradictions they show. Then give a
clear, direct answer.`

// buildAnswerPrompt creates the answer generation system prompt.
// extendedReasoning adds step-by-step instructions for analytical and
// behavioral questions.
func buildAnswerPrompt(contextText string, extendedReasoning bool) string {
	prompt := fmt.Sprintf(answerPromptTemplate, contextText)
	if extendedReasoning {
		prompt += answerReasoningAddendum
	}
	return prompt
}
