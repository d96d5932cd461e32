package realtime

// Server event types surfaced by the speech-to-speech endpoint.
const (
	eventTypeItemCreated            = "conversation.item.created"
	eventTypeResponseDone           = "response.done"
	eventTypeTranscriptionCompleted = "conversation.item.input_audio_transcription.completed"
	eventTypeAudioDelta             = "response.audio.delta"
	eventTypeError                  = "error"
)

// ServerEvent is the envelope for every inbound message. Only the fields
// relevant to a given type are populated.
type ServerEvent struct {
	Type       string             `json:"type"`
	EventID    string             `json:"event_id,omitempty"`
	ItemID     string             `json:"item_id,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	Delta      string             `json:"delta,omitempty"`
	Item       *ConversationItem  `json:"item,omitempty"`
	Response   *ResponseBody      `json:"response,omitempty"`
	Error      *ServerErrorDetail `json:"error,omitempty"`
}

// ConversationItem is a single conversation entry, user or assistant.
type ConversationItem struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type,omitempty"`
	Role    string        `json:"role,omitempty"`
	Content []ContentPart `json:"content,omitempty"`
}

// ContentPart is one piece of an item's content. Text carries typed input,
// Transcript carries the text form of spoken audio.
type ContentPart struct {
	Type       string `json:"type"`
	Text       string `json:"text,omitempty"`
	Transcript string `json:"transcript,omitempty"`
}

// ResponseBody is the payload of a completed model response.
type ResponseBody struct {
	Output []ConversationItem `json:"output,omitempty"`
}

// ServerErrorDetail describes a fatal protocol error from the endpoint.
type ServerErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// text returns the first non-empty text or transcript in the item.
func (it *ConversationItem) text() string {
	if it == nil {
		return ""
	}
	for _, part := range it.Content {
		if part.Text != "" {
			return part.Text
		}
		if part.Transcript != "" {
			return part.Transcript
		}
	}
	return ""
}

// text returns the assistant text of the first output item that has any.
func (r *ResponseBody) text() string {
	if r == nil {
		return ""
	}
	for _, item := range r.Output {
		if t := item.text(); t != "" {
			return t
		}
	}
	return ""
}

// Outbound commands.

type sessionUpdateCommand struct {
	Type    string        `json:"type"`
	Session sessionConfig `json:"session"`
}

type sessionConfig struct {
	Modalities              []string            `json:"modalities"`
	Voice                   string              `json:"voice"`
	Instructions            string              `json:"instructions,omitempty"`
	InputAudioFormat        string              `json:"input_audio_format"`
	OutputAudioFormat       string              `json:"output_audio_format"`
	InputAudioTranscription transcriptionConfig `json:"input_audio_transcription"`
	TurnDetection           turnDetectionConfig `json:"turn_detection"`
}

type transcriptionConfig struct {
	Model string `json:"model"`
}

type turnDetectionConfig struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMs   int     `json:"prefix_padding_ms"`
	SilenceDurationMs int     `json:"silence_duration_ms"`
}

func newSessionUpdate(voice, instructions string) sessionUpdateCommand {
	return sessionUpdateCommand{
		Type: "session.update",
		Session: sessionConfig{
			Modalities:        []string{"text", "audio"},
			Voice:             voice,
			Instructions:      instructions,
			InputAudioFormat:  "pcm16",
			OutputAudioFormat: "pcm16",
			InputAudioTranscription: transcriptionConfig{
				Model: "whisper-1",
			},
			TurnDetection: turnDetectionConfig{
				Type:              "server_vad",
				Threshold:         0.5,
				PrefixPaddingMs:   300,
				SilenceDurationMs: 500,
			},
		},
	}
}

type appendAudioCommand struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

func newAppendAudio(frame string) appendAudioCommand {
	return appendAudioCommand{Type: "input_audio_buffer.append", Audio: frame}
}

type commitAudioCommand struct {
	Type string `json:"type"`
}

func newCommitAudio() commitAudioCommand {
	return commitAudioCommand{Type: "input_audio_buffer.commit"}
}

type createItemCommand struct {
	Type string           `json:"type"`
	Item ConversationItem `json:"item"`
}

func newCreateTextItem(text string) createItemCommand {
	return createItemCommand{
		Type: "conversation.item.create",
		Item: ConversationItem{
			Type: "message",
			Role: "user",
			Content: []ContentPart{
				{Type: "input_text", Text: text},
			},
		},
	}
}

type createResponseCommand struct {
	Type string `json:"type"`
}

func newCreateResponse() createResponseCommand {
	return createResponseCommand{Type: "response.create"}
}
