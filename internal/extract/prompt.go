package extract

import "strings"

// PromptPlaceholder is the single substitution token in the instruction
// template. The document text replaces it verbatim - no escaping, no
// truncation.
const PromptPlaceholder = "{DOCUMENT_TEXT}"

const promptTemplate = `You are given the plain text of a historical document (an obituary, parish register entry, census sheet, funeral card or similar). Extract every person mentioned in the document, not only the principal subject.

Return a JSON array of person objects. Each object follows this schema:
- "first_name" (string, required)
- "last_name" (string, required)
- "middle_names" (string or null)
- "gender" ("Male", "Female" or null)
- "birth_date" (string "YYYY-MM-DD" or null)
- "birth_place" (string or null)
- "death_date" (string "YYYY-MM-DD" or null)
- "death_place" (string or null)
- "burial_place" (string or null)
- "age_at_death" (string or null)

Rules:
- Include one object per distinct individual named in the document.
- Normalize partial or approximate dates to a full calendar date: a bare year becomes January 1st of that year ("1884" -> "1884-01-01"), a month and year become the 1st of that month.
- Omit or use null for anything the document does not state. Never invent values.
- Return the JSON array only.

Document text:
` + PromptPlaceholder

// BuildPrompt substitutes the document text into the fixed instruction
// template. Pure: identical input always yields an identical prompt.
// Empty document text is accepted and forwarded as-is.
func BuildPrompt(documentText string) string {
	return strings.Replace(promptTemplate, PromptPlaceholder, documentText, 1)
}
