package main

import "strings"

// SocialPostingGuidance covers composing and publishing posts on a social
// network from a signed-in browser profile.
const SocialPostingGuidance = `
# Publishing Posts

-   **Signed-in session**: The browser uses the user's own profile. If a login page appears instead of the feed, report it with task_completion (success=false) rather than typing credentials.
-   **Composer**: Open the post composer from the feed ("Start a post" or the site's equivalent), then type into the editor that appears. Use browser_type so emojis and accents arrive as typed.
-   **Review before publishing**: Extract the composer content once before pressing the publish button and check that the whole text is there.
-   **Confirmation**: After publishing, wait for the composer to close and confirm the post shows up in the feed before finishing.
`

// LanguageGuidance keeps the output in the user's language.
const LanguageGuidance = `
# Language

-   Write the post in the same language as the task unless the task asks for another one.
-   Your final task_completion result should be short and in the task's language.
`

// composeInstructions combines the sections passed to the agent as custom
// instructions.
func composeInstructions() string {
	var builder strings.Builder
	builder.WriteString(SocialPostingGuidance)
	builder.WriteString(LanguageGuidance)
	return strings.TrimSpace(builder.String())
}
