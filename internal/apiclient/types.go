package apiclient

import "context"

// Endpoints exposed by the summarization service.
const (
	EndpointSummarizeText  = "/summarize-text"
	EndpointAskQuestion    = "/ask-question"
	EndpointUploadPDF      = "/upload-pdf"
	EndpointUploadDocument = "/upload-document"
)

// Method selects the summarization strategy.
type Method string

const (
	MethodExtractive  Method = "extractive"
	MethodAbstractive Method = "abstractive"
)

// Length selects how long the summary should be.
type Length string

const (
	LengthShort    Length = "short"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"
)

// SummaryRequest is the JSON body of /summarize-text.
type SummaryRequest struct {
	Text      string `json:"text" validate:"nonblank"`
	Method    Method `json:"method" validate:"required,oneof=extractive abstractive"`
	Length    Length `json:"length,omitempty" validate:"omitempty,oneof=short medium detailed"`
	UseOpenAI bool   `json:"useOpenAI"`
}

// QARequest is the JSON body of /ask-question.
type QARequest struct {
	Context  string `json:"context"`
	Question string `json:"question" validate:"nonblank"`
}

// Upload is a file sent as multipart form data to /upload-pdf or
// /upload-document.
type Upload struct {
	Filename  string `validate:"required"`
	Data      []byte `validate:"min=1"`
	Method    Method `validate:"required,oneof=extractive abstractive"`
	Length    Length `validate:"required,oneof=short medium detailed"`
	UseOpenAI bool
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

// API is the contract of the summarization service as seen by the client.
type API interface {
	SummarizeText(ctx context.Context, req SummaryRequest) (string, error)
	AskQuestion(ctx context.Context, req QARequest) (string, error)
	UploadPDF(ctx context.Context, up Upload) (string, error)
	UploadDocument(ctx context.Context, up Upload) (string, error)
}
