package gemini

import "time"

// FileState is the remote processing state of an uploaded file.
type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

// File is the remote service's descriptor for an uploaded media asset.
type File struct {
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	URI         string    `json:"uri,omitempty"`
	MimeType    string    `json:"mimeType,omitempty"`
	State       FileState `json:"state,omitempty"`
}

// fileEnvelope wraps a File in upload and create responses.
type fileEnvelope struct {
	File File `json:"file"`
}

// uploadMetadata is the initiate-phase request body.
type uploadMetadata struct {
	File uploadFileMetadata `json:"file"`
}

type uploadFileMetadata struct {
	DisplayName string `json:"displayName"`
	Name        string `json:"name,omitempty"`
}

// listFilesResponse is the response to GET /files.
type listFilesResponse struct {
	Files         []File `json:"files"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// Part is one element of generation request content.
// Exactly one field should be set.
type Part struct {
	Text       string    `json:"text,omitempty"`
	FileData   *FileData `json:"fileData,omitempty"`
	InlineData *Blob     `json:"inlineData,omitempty"`
}

// FileData references a previously uploaded remote file.
type FileData struct {
	FileURI  string `json:"fileUri"`
	MimeType string `json:"mimeType"`
}

// Blob carries inline media bytes, base64-encoded.
type Blob struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Content groups parts under a role.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerationConfig holds generation parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateRequest is the generateContent request body.
type generateRequest struct {
	Contents          []Content        `json:"contents"`
	SystemInstruction *Content         `json:"systemInstruction,omitempty"`
	GenerationConfig  GenerationConfig `json:"generationConfig,omitempty"`
}

// UsageMetadata is the token accounting attached to a generation response.
type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// generateResponse is the generateContent response body.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
			Role  string `json:"role"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata *UsageMetadata `json:"usageMetadata,omitempty"`
	Error         *apiError      `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GenerateResult is the normalized output of a generation call.
type GenerateResult struct {
	Text  string
	Usage *UsageMetadata
}

// Config holds configuration for the client.
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int
}

// DefaultConfig returns sensible defaults for the given API key.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-pro",
		Timeout:         10 * time.Minute, // Video-heavy prompts need extended timeout
		MaxOutputTokens: 65536,
	}
}
