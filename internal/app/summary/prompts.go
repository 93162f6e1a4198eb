package summary

import (
	"fmt"

	"lexscribe/internal/app/model"
)

const systemPrompt = "You summarize recorded conversations for professionals. Be accurate and concise. Never invent facts that are not in the transcript."

const legalPrompt = `The following is a transcript of a legal proceeding or consultation.

Write a summary with these sections:
1. Parties and participants
2. Key facts and statements
3. Legal issues raised
4. Decisions, rulings or agreements
5. Follow-up actions and deadlines

Transcript:
%s`

const meetingPrompt = `The following is a transcript of a business meeting.

Write a summary with these sections:
1. Attendees
2. Topics discussed
3. Decisions made
4. Action items with owners

Transcript:
%s`

// Prompt builds the user prompt for a meeting type
func Prompt(meetingType model.MeetingType, transcript string) string {
	if meetingType == model.MeetingTypeMeeting {
		return fmt.Sprintf(meetingPrompt, transcript)
	}
	return fmt.Sprintf(legalPrompt, transcript)
}
