package prompts

import "fmt"

const answerFormat = `Return your response in this exact format:
Verdict: [Yes/No/Partial]
Confidence: [0-100]%
Reasoning: [Brief explanation of your assessment]`

var auditPrompts = map[string]string{
	"greeting": `Listen to this call recording and check if the agent offered a professional greeting at the start of the call.

Look for:
- Professional greeting (e.g., "Hello", "Good morning/afternoon")
- Thanking the customer for calling
- Polite and courteous tone
- Proper introduction of the company or service

` + answerFormat + `

Focus on whether the agent started the call with an appropriate professional greeting.`,

	"introduction": `Listen to this call recording and check if the agent properly introduced themselves and their company.

Look for:
- Agent stating their name
- Agent mentioning the company name
- Clear identification of who they are
- Professional introduction format

` + answerFormat + `

Focus on whether the agent clearly identified themselves and their organization.`,

	"active-listening": `Listen to this call recording and assess if the agent demonstrates active listening skills throughout the conversation.

Look for:
- Acknowledging customer statements
- Asking clarifying questions
- Paraphrasing customer concerns
- Not interrupting the customer
- Using verbal acknowledgments (e.g., "I understand", "I see")

` + answerFormat + `

Focus on whether the agent actively engaged with and understood the customer's needs.`,

	"empathy": `Listen to this call recording and evaluate if the agent shows empathy towards customer concerns and situations.

Look for:
- Understanding customer frustration or concerns
- Using empathetic language and tone
- Acknowledging customer feelings
- Showing genuine concern for customer issues
- Maintaining a caring and supportive attitude

` + answerFormat + `

Focus on whether the agent demonstrated genuine empathy and understanding.`,

	"clarity": `Listen to this call recording and assess if the agent communicates clearly and concisely.

Look for:
- Clear and understandable speech
- Appropriate speaking pace
- Avoiding jargon or technical terms
- Explaining complex concepts simply
- Good pronunciation and enunciation

` + answerFormat + `

Focus on whether the agent's communication was clear and easy to understand.`,

	"solution-oriented": `Listen to this call recording and check if the agent focuses on solving customer problems and providing solutions.

Look for:
- Offering specific solutions to problems
- Being proactive in addressing issues
- Suggesting alternatives when needed
- Taking initiative to solve problems
- Providing actionable next steps

` + answerFormat + `

Focus on whether the agent actively worked towards solving the customer's problems.`,

	"product-knowledge": `Listen to this call recording and assess if the agent demonstrates good product knowledge and expertise.

Look for:
- Accurate information about products/services
- Confidence in responses
- Detailed and accurate explanations
- Understanding of company policies and procedures

` + answerFormat + `

Focus on whether the agent showed strong knowledge of products, services, and policies.`,

	"objection-handling": `Listen to this call recording and evaluate if the agent effectively handles customer objections and concerns.

Look for:
- Acknowledging customer objections
- Addressing concerns professionally
- Providing alternatives or solutions
- Maintaining composure under pressure
- Turning objections into opportunities

` + answerFormat + `

Focus on whether the agent handled objections professionally and effectively.`,

	"closing": `Listen to this call recording and check if the agent properly closes the call.

Look for:
- Summarizing what was discussed
- Confirming next steps or actions
- Thanking the customer for their time
- Professional closing statements
- Clear conclusion to the conversation

` + answerFormat + `

Focus on whether the agent properly concluded the call with appropriate closing statements.`,

	"follow-up": `Listen to this call recording and check if the agent commits to follow-up actions or next steps.

Look for:
- Promising to call back
- Committing to send information
- Setting up follow-up appointments
- Escalating issues when needed
- Clear next steps for the customer

` + answerFormat + `

Focus on whether the agent made clear commitments for follow-up actions.`,
}

// PromptFor resolves the prompt for a parameter: a caller-supplied custom
// prompt wins, then the built-in catalog, then a generic fallback so an
// unknown parameter id still produces a usable instruction.
func PromptFor(parameterID string, customPrompts map[string]string) string {
	if custom, ok := customPrompts[parameterID]; ok && custom != "" {
		return custom
	}
	if p, ok := auditPrompts[parameterID]; ok {
		return p
	}
	return fmt.Sprintf("Analyze this call recording for %s. "+
		"Return 'Yes', 'No' or 'Partial', include a confidence score (0-100%%), and provide a brief reasoning.", parameterID)
}