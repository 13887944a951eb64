package constant

const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
	ChatMessageRoleSystem    = "system"
)

const ChatSessionDefaultTitle = "New Chat"

const ChatSessionGreeting = "こんにちは！何かお手伝いできることはありますか？"

// DefaultSystemPrompt is sent when the conversation carries no system message.
const DefaultSystemPrompt = `あなたは親切で知識豊富なAIアシスタントです。
ユーザーの質問に対して、正確で分かりやすい回答を提供してください。
提供された参考資料がある場合は、それを活用して回答してください。`

// ReportExtractionPrompt asks the model to condense a daily-report conversation
// into a machine-readable summary. The reply must contain a fenced json block.
const ReportExtractionPrompt = `以下は日報作成のための会話です。会話の内容から日報の要約を作成してください。

回答には必ず次の形式のJSONコードブロックを1つ含めてください:

` + "```json" + `
{
  "業務内容": "...",
  "成果": "...",
  "課題": "...",
  "明日の予定": "..."
}
` + "```" + `

値が会話から読み取れない項目は空文字にしてください。`
