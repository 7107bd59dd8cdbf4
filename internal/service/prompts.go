package service

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"docchat/internal/model"
)

// RefusalPhrase is the fixed answer the model must give when the context does
// not contain the requested information.
const RefusalPhrase = "I couldn't find that information in the provided PDF(s)."

// historyWindow bounds injected conversation memory to the last 3 exchanges.
const historyWindow = 6

const generalSystemPrompt = "You are a helpful AI assistant. " +
	"No PDF has been uploaded yet. " +
	"Answer the user's question as helpfully as possible using your general knowledge, " +
	"and let them know they can upload a PDF for document-specific answers."

const suggestionsSystemPrompt = "Based on the user's question and the assistant's answer, generate exactly 3 short " +
	"follow-up questions the user might want to ask next. " +
	"Return ONLY a valid JSON array of 3 strings, no extra text. " +
	`Example: ["What else?", "Can you elaborate?", "How does X work?"]`

// buildChatMessages assembles the system/context/history prompt. With no
// context the system prompt switches to general-knowledge framing; otherwise
// answers are restricted to the excerpts and the refusal phrase is mandated.
func buildChatMessages(contextText, query string, history []model.ChatMessage, numPDFs int) []*schema.Message {
	var systemContent string
	if numPDFs == 0 || strings.TrimSpace(contextText) == "" {
		systemContent = generalSystemPrompt
	} else {
		pdfPhrase := "the provided PDF"
		if numPDFs > 1 {
			pdfPhrase = fmt.Sprintf("%d PDFs", numPDFs)
		}
		systemContent = fmt.Sprintf(
			"You are a helpful AI assistant. The user has uploaded %s. "+
				"Answer the user's question based only on the provided context excerpts, "+
				"which may come from multiple documents. When relevant, mention which document "+
				"the information comes from. If the answer is not in the context, say '%s'",
			pdfPhrase, RefusalPhrase)
	}

	messages := []*schema.Message{schema.SystemMessage(systemContent)}

	// Last 6 turns (3 exchanges) only, in original order, user/assistant with
	// non-empty content.
	turns := history
	if len(turns) > historyWindow {
		turns = turns[len(turns)-historyWindow:]
	}
	for _, turn := range turns {
		if turn.Content == "" {
			continue
		}
		switch turn.Role {
		case "user":
			messages = append(messages, schema.UserMessage(turn.Content))
		case "assistant":
			messages = append(messages, schema.AssistantMessage(turn.Content, nil))
		}
	}

	final := query
	if strings.TrimSpace(contextText) != "" {
		final = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)
	}
	return append(messages, schema.UserMessage(final))
}

func buildTranslateMessages(text, targetLanguage string) []*schema.Message {
	systemContent := fmt.Sprintf(
		"You are a professional translator. "+
			"Translate the following document text into %s. "+
			"Output ONLY the translated text, with no introductions, no explanations, "+
			"no preamble and no meta-commentary. "+
			"Preserve the original structure, headings, and paragraphs exactly.",
		targetLanguage)
	return []*schema.Message{
		schema.SystemMessage(systemContent),
		schema.UserMessage(text),
	}
}

func buildSuggestionMessages(message, answer string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(suggestionsSystemPrompt),
		schema.UserMessage(fmt.Sprintf("Question: %s\n\nAnswer: %s", message, answer)),
	}
}
