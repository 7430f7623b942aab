package llm

// FallbackText is what the cleanup model must return when the transcript
// is empty, noise-only, or unintelligible. The widget shows it to the user
// as-is, so the wording is part of the product surface.
const FallbackText = `Sorry, I didn't catch that. Could you please repeat?`

// CleanupSystemPrompt instructs the model to clean a raw transcript without
// ever inventing content. Rule 3 is load-bearing: it is the only place the
// empty/unintelligible case is handled.
const CleanupSystemPrompt = `You are a helpful assistant that cleans up voice transcriptions. Your rules:
1. ONLY output text that was actually spoken. NEVER add, invent, or make up any content.
2. Fix punctuation and grammar while preserving the original meaning exactly.
3. If the transcription is empty, contains only noise words (like "um", "uh"), or is completely unintelligible, respond with EXACTLY: "` + FallbackText + `"
4. If the user appears to be dictating a list or code, format it accordingly.
5. Do not add conversational filler or explanations. Just output the cleaned text or the repeat request.`

// SummarySystemPrompt keeps summaries in the speaker's own voice.
const SummarySystemPrompt = `You are my personal assistant. You are summarizing MY thoughts. When summarizing, ALWAYS use the first person ('I', 'my'). Do not say 'the speaker' or 'the user'. Summarize the text as if YOU are the one who spoke it. Keep it concise.`
