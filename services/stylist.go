package services

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// LLMModelName is the GenAI model to use for a request.
type LLMModelName int32

const (
	Pro25 LLMModelName = iota
	Flash25
	FlashLite25
	Flash20
	Flash25Image
)

func (t LLMModelName) String() string {
	switch t {
	case Pro25:
		return "gemini-2.5-pro"
	case Flash25:
		return "gemini-2.5-flash"
	case FlashLite25:
		return "gemini-2.5-flash-lite-preview-06-17"
	case Flash25Image:
		return "gemini-2.5-flash-image-preview"
	case Flash20:
		return "gemini-2.0-flash"
	default:
		return "gemini-2.0-flash"
	}
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

type LLMResponse struct {
	Response           string   `json:"response"`
	Images             [][]byte `json:"images,omitempty"`
	InputTokenCount    int32    `json:"input_token_count"`
	Thoughts           string   `json:"thoughts"`
	ThoughtsTokenCount int32    `json:"thoughts_token_count"`
	OutputTokenCount   int32    `json:"output_token_count"`
	TotalTokenCount    int32    `json:"total_token_count"`
	IsTest             bool     `json:"is_test"`
}

// OutfitBrief is everything the stylist model needs to pick items: the
// user's request plus their style profile.
type OutfitBrief struct {
	Occasion        string   `json:"occasion"`
	Style           string   `json:"style"`
	Mood            string   `json:"mood"`
	Season          string   `json:"season"`
	Gender          string   `json:"gender"`
	SkinTone        string   `json:"skin_tone"`
	BodyType        string   `json:"body_type"`
	FitPreference   string   `json:"fit_preference"`
	PreferredStyles []string `json:"preferred_styles"`
}

// ItemAnalysisResponse is the JSON shape the model returns for a single
// wardrobe item photo.
type ItemAnalysisResponse struct {
	Name         string   `json:"name"`
	ClothingType string   `json:"clothing_type"`
	Color        string   `json:"color"`
	Material     string   `json:"material"`
	Season       string   `json:"season"`
	Gender       string   `json:"gender"`
	StyleTags    []string `json:"style_tags"`
	Description  string   `json:"description"`
}

// OutfitCompositionResponse is the JSON shape the model returns when asked
// to compose an outfit from wardrobe candidates.
type OutfitCompositionResponse struct {
	Name            string   `json:"name"`
	ItemIDs         []string `json:"item_ids"`
	Reasoning       string   `json:"reasoning"`
	ConfidenceScore float64  `json:"confidence_score"`
}

type LLMStylistProvider interface {
	AnalyzeItem(itemImagePath string, modelName LLMModelName) (*LLMResponse, error)
	ComposeOutfit(brief OutfitBrief, candidatesJSON string, modelName LLMModelName) (*LLMResponse, error)
	GeneratePreview(personAvatarPath string, itemImagePaths []string, modelName LLMModelName) (*LLMResponse, error)
	GenerateAvatar(personPhotoPath string, modelName LLMModelName) (*LLMResponse, error)
}

type GoogleLLMStylist struct{}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

var jsonFenceRule = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// StripJSONFences removes a markdown code fence the model sometimes wraps
// around JSON output despite the response MIME type.
func StripJSONFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if match := jsonFenceRule.FindStringSubmatch(trimmed); match != nil {
		return match[1]
	}
	return trimmed
}

func tryUploadGoogleStorage(ctx context.Context, client *genai.Client, filePath string, newName *string) (*genai.File, error) {
	var genFile *genai.File
	var err error
	maxUploadTimes := 3
	for i := range maxUploadTimes {
		config := &genai.UploadFileConfig{}
		if newName != nil {
			config = &genai.UploadFileConfig{
				Name: *newName,
			}
		}

		genFile, err = client.Files.UploadFromPath(ctx, filePath, config)
		if err == nil {

			fmt.Println("File uploaded successfully:", filePath, "Attempt:", i+1)
			return genFile, nil
		}
		fmt.Printf("Error uploading file %s, attempt %d: %v\n", filePath, i+1, err)
	}
	return nil, fmt.Errorf("failed to upload file to google storage after %d attempts: %s", maxUploadTimes, filePath)
}

func GetAllInlineImages(result *genai.GenerateContentResponse) ([][]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("empty response")
	}

	var allImageData [][]byte

	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil || len(cand.Content.Parts) == 0 {
			continue
		}

		for _, part := range cand.Content.Parts {
			inlineData := part.InlineData
			if inlineData != nil {
				if strings.HasPrefix(inlineData.MIMEType, "image/") {
					if len(inlineData.Data) > 0 {
						allImageData = append(allImageData, inlineData.Data)
					}
				}
			}
		}
	}

	if len(allImageData) == 0 {
		return nil, nil
	}

	return allImageData, nil
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	for _, c := range result.Candidates {
		fmt.Println("Finish reason: ", c.FinishReason, " Finish message: ", c.FinishMessage)

		if len(c.SafetyRatings) > 0 {
			fmt.Println("[Safety] Safety ratings present:", len(c.SafetyRatings))
			for _, rating := range c.SafetyRatings {
				fmt.Println("[Safety] rating:", rating.Category, "Score:", rating.Probability, "Severity score:", rating.SeverityScore, " Blocked:", rating.Blocked)
				if rating.Blocked {
					return nil, fmt.Errorf("content violation: couldn't analyze the image, because it contains %s", rating.Category)
				}
			}
		}
		for _, part := range c.Content.Parts {
			if part.Thought && part.Text != "" {
				if result.UsageMetadata != nil && result.UsageMetadata.ThoughtsTokenCount > 25000 {
					fmt.Println("Warning: Thought content is too long:", result.UsageMetadata.ThoughtsTokenCount, part.Text)
				}
				thinkingContent = part.Text
				continue
			}

		}
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     result.Text(),
	}, nil
}

func newGenaiClient(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  os.Getenv("GOOGLE_API_KEY"),
		Backend: genai.BackendGeminiAPI,
	})
}

func usageCounts(result *genai.GenerateContentResponse) (input, thoughts, output, total int32) {
	if result.UsageMetadata == nil {
		fmt.Println("UsageMetadata is nil!")
		return
	}
	input = result.UsageMetadata.PromptTokenCount
	thoughts = result.UsageMetadata.ThoughtsTokenCount
	output = result.UsageMetadata.CandidatesTokenCount
	total = result.UsageMetadata.TotalTokenCount
	fmt.Println("Input token count:", input)
	fmt.Println("Output token count:", output)
	fmt.Println("Thoughts token count:", thoughts)
	fmt.Println("Total token count:", total)
	return
}

// AnalyzeItem sends a single wardrobe item photo to the model and asks for
// catalog attributes as structured JSON.
func (GoogleLLMStylist) AnalyzeItem(itemImagePath string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, err
	}

	genFile, err := tryUploadGoogleStorage(ctx, client, itemImagePath, nil)
	if err != nil {
		fmt.Println("Error uploading item image file:", itemImagePath, err)
		return nil, fmt.Errorf("error uploading file %s: %v", itemImagePath, err)
	}

	parts := []*genai.Part{
		{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		},
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  5000,
		Temperature:      floatPointer(0.4),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert fashion cataloguer. Analyze the single clothing item in the photo and return its attributes in JSON.
- "name": short display name, e.g. "Black Slim Jeans".
- "clothing_type": one of shirt, top, pants, bottom, dress, skirt, jacket, sweater, shoes, accessory, other.
- "color": the dominant color, lowercase, e.g. "navy blue".
- "material": the most likely material, lowercase, e.g. "cotton", "denim", "leather". Empty string if unclear.
- "season": one of spring, summer, fall, winter, all.
- "gender": one of female, male, unisex.
- "style_tags": up to 5 lowercase style names this item fits, e.g. ["casual", "streetwear"].
- "description": one sentence describing the item.
If the photo does not contain a clothing item, return "NO_ITEM" for the name and keep other fields empty.`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name":          {Type: "string"},
				"clothing_type": {Type: "string"},
				"color":         {Type: "string"},
				"material":      {Type: "string"},
				"season":        {Type: "string"},
				"gender":        {Type: "string"},
				"style_tags":    {Type: "array", Items: &genai.Schema{Type: "string"}},
				"description":   {Type: "string"},
			},
			Required: []string{"name", "clothing_type", "color"},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s %s ", itemImagePath, result.PromptFeedback.BlockReasonMessage)
	}

	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

// ComposeOutfit asks the model to assemble one outfit out of the candidate
// wardrobe items. Candidates arrive pre-filtered by style compatibility, the
// model only balances colors, occasion and coverage of categories.
func (GoogleLLMStylist) ComposeOutfit(brief OutfitBrief, candidatesJSON string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Compose one outfit for this request:
Occasion: %s
Style: %s
Mood: %s
Season: %s
Wearer: gender=%s skin_tone=%s body_type=%s fit_preference=%s preferred_styles=%s

Candidate wardrobe items (JSON array):
%s`,
		brief.Occasion, brief.Style, brief.Mood, brief.Season,
		brief.Gender, brief.SkinTone, brief.BodyType, brief.FitPreference,
		strings.Join(brief.PreferredStyles, ","), candidatesJSON)

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		CandidateCount:   1,
		MaxOutputTokens:  10000,
		Temperature:      floatPointer(0.8),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an expert personal stylist. Pick 2 to 6 items from the provided candidates that form one coherent outfit for the request. Use only "id" values that exist in the candidate list. Prefer exactly one item per body zone (top, bottom, shoes; dress replaces top and bottom) plus optional layering and accessories. Respect the wearer's profile.
Return JSON:
- "name": a short catchy outfit name.
- "item_ids": the chosen candidate ids, as strings.
- "reasoning": 2-3 sentences on why these items work together.
- "confidence_score": 0.0-1.0, how well the wardrobe could satisfy the request.
If no sensible outfit can be built from the candidates, return an empty "item_ids" array and explain why in "reasoning".`},
			},
		},
		ResponseSchema: &genai.Schema{
			Type: "object",
			Properties: map[string]*genai.Schema{
				"name":             {Type: "string"},
				"item_ids":         {Type: "array", Items: &genai.Schema{Type: "string"}},
				"reasoning":        {Type: "string"},
				"confidence_score": {Type: "number"},
			},
			Required: []string{"name", "item_ids", "reasoning"},
		},
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  Int32Pointer(3000),
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s ", result.PromptFeedback.BlockReasonMessage)
	}

	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

// GenerateAvatar turns an arbitrary user photo into the standardized
// full-body avatar the preview generator composes outfits onto.
func (GoogleLLMStylist) GenerateAvatar(personPhotoPath string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, err
	}

	// This file must exist in the same folder as the executable.
	const whiteCanvasPath = "./white_540x960.png"
	if _, err = os.Open(whiteCanvasPath); err != nil {
		return nil, err
	}

	var genFiles []*genai.File

	personPhotoFile, err := tryUploadGoogleStorage(ctx, client, personPhotoPath, nil)
	if err != nil {
		fmt.Println("Error uploading person photo file:", personPhotoPath, err)
		return nil, fmt.Errorf("error uploading person photo file %s: %v", personPhotoPath, err)
	}
	genFiles = append(genFiles, personPhotoFile)

	whiteCanvasFile, err := tryUploadGoogleStorage(ctx, client, whiteCanvasPath, nil)
	if err != nil {
		fmt.Println("Error uploading white canvas file:", whiteCanvasPath, err)
		return nil, fmt.Errorf("error uploading white canvas file %s: %v", whiteCanvasPath, err)
	}
	genFiles = append(genFiles, whiteCanvasFile)

	// [Photo, Canvas, Text]
	var parts []*genai.Part
	for _, genFile := range genFiles {
		parts = append(parts, &genai.Part{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		})
	}

	parts = append(parts, &genai.Part{
		Text: "Generate a fashion-style full-body commercial head to toe photographer edited portrait of the person from first image by keeping his identity, personality, facial identity(100% same) and use solid, flat, unlit, white second image as a new background for person image which will be chromakey. keep user facial identity exactly same, unchanged. Person should be in center and should take 70% of the image area. By keeping same personality, identity and exact same body/hand/head/leg sizes - generate the straight facing the camera and relaxed, confident pose with neutral white shirt, white trousers and white neutral shoes. The lighting on user should be natural, soft and professional, high-resolution and opening the color of person. Remove items from hands, position neutrally with slight smile. Clean all background elements, watermarks, other people/objects. If no person detected: return \"NO_PERSON\", otherwise output only full-body person, with on flat, consistent, all white second image background. Do not apply slight grayish gradients, keep all edges white. Aspect ratio 9:16 portrait size",
	})

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		MaxOutputTokens: 50000,
		Temperature:     floatPointer(1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `If no person detected in the image return NO_PERSON as response. Analyze the image, and provide only a full body avatar.`},
			},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s %s ", personPhotoPath, result.PromptFeedback.BlockReasonMessage)
	}

	fmt.Println("Number of candidates received:", len(result.Candidates))
	llmResponseImagesBytes, err := GetAllInlineImages(result)
	if err != nil {
		fmt.Println("Error getting first candidate image: ", err)
		fmt.Println(result)
		return nil, fmt.Errorf("error getting first candidate image: %v", err)
	}

	fmt.Println("Number of images extracted:", len(llmResponseImagesBytes))
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Images:             llmResponseImagesBytes,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil
}

// GeneratePreview renders the user's full body avatar wearing the chosen
// outfit items.
func (GoogleLLMStylist) GeneratePreview(personAvatarPath string, itemImagePaths []string, modelName LLMModelName) (*LLMResponse, error) {
	ctx := context.Background()
	client, err := newGenaiClient(ctx)
	if err != nil {
		return nil, err
	}

	var genFiles []*genai.File

	genFile, err := tryUploadGoogleStorage(ctx, client, personAvatarPath, nil)
	if err != nil {
		fmt.Println("Error uploading person avatar file:", personAvatarPath, err)
		return nil, fmt.Errorf("error uploading file %s: %v", personAvatarPath, err)
	}
	genFiles = append(genFiles, genFile)
	// Upload each item photo and get the URI
	for i, filePath := range itemImagePaths {
		if filePath == "" {
			fmt.Println("File path empty in index:", i)
			continue
		}
		genFile, err := tryUploadGoogleStorage(ctx, client, filePath, nil)
		if err != nil {
			fmt.Println("Error uploading file:", filePath, err)
			return nil, fmt.Errorf("error uploading file %s: %v", filePath, err)
		}
		genFiles = append(genFiles, genFile)
	}

	var parts []*genai.Part
	for i, genFile := range genFiles {
		fmt.Println("File path for image parse:", i, " ", genFile.URI, genFile.MIMEType)
		parts = append(parts, &genai.Part{
			FileData: &genai.FileData{
				FileURI:  genFile.URI,
				MIMEType: genFile.MIMEType,
			},
		})
	}

	result, err := client.Models.GenerateContent(ctx, modelName.String(), []*genai.Content{{Parts: parts}}, &genai.GenerateContentConfig{
		CandidateCount:  1,
		MaxOutputTokens: 50000,
		Temperature:     floatPointer(1),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `Edit first person image into a fashion-style full-body commercial head to toe photographer edited portrait by keeping his identity, personality, placement in image in center, facial identity(100% same) and use the same solid, flat, unlit, white first image background including ratio. Take the all images after first one and let the same exact person from the first image wear them together as one outfit. For missing clothing items, keep original ones that user wears. keep user facial identity exactly same, unchanged. By keeping same personality, identity and exact same body/hand/head/leg sizes - generate the straight facing the camera and relaxed, confident pose. The lighting on user should be natural, soft and professional, high-resolution and opening the color of person. Remove items from hands, position neutrally with slight smile. Clean all background elements, watermarks, other people/objects. If no person detected: return "NO_PERSON", otherwise output only full-body person, with on flat, consistent, all white background. Do not apply slight grayish gradients, keep all edges white. Aspect ratio 9:16 portrait size`},
			},
		},
	})

	if err != nil {
		fmt.Println("Error in GenerateContent:", err)
		return nil, fmt.Errorf("%v", err)
	}

	inputTokenCount, thoughtsTokenCount, outputTokenCount, totalTokenCount := usageCounts(result)

	if result.PromptFeedback != nil {
		fmt.Println(result.PromptFeedback.BlockReason)
		fmt.Println(result.PromptFeedback.BlockReasonMessage)
		fmt.Println(result.PromptFeedback.SafetyRatings)
		return nil, fmt.Errorf("content violation: %s %s ", personAvatarPath, result.PromptFeedback.BlockReasonMessage)
	}

	fmt.Println("Number of candidates received:", len(result.Candidates))
	llmResponseImagesBytes, err := GetAllInlineImages(result)
	if err != nil {
		fmt.Println("Error getting first candidate image: ", err)
		fmt.Println(result)
		return nil, fmt.Errorf("error getting first candidate image: %v", err)
	}
	fmt.Println("Number of images extracted:", len(llmResponseImagesBytes))
	llmResponseText, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		fmt.Println("Error getting first candidate text: ", err)
		fmt.Println(result.Candidates)
		return nil, fmt.Errorf("error getting first candidate text: %v", err)
	}

	return &LLMResponse{
		Response:           llmResponseText.Text,
		Images:             llmResponseImagesBytes,
		Thoughts:           llmResponseText.Thoughts,
		InputTokenCount:    inputTokenCount,
		ThoughtsTokenCount: thoughtsTokenCount,
		OutputTokenCount:   outputTokenCount,
		TotalTokenCount:    totalTokenCount,
		IsTest:             false,
	}, nil

}
