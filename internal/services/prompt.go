package services

import "fmt"

// Instruction is the structured payload handed to the inference backend:
// the job context plus the fixed response-format contract.
type Instruction struct {
	JobTitle       string
	JobDescription string
	ResponseFormat string
}

// ResponseFormat is the contract describing the exact shape the
// inference backend must return its feedback in. It is passed through
// to the backend unchanged, never generated dynamically.
const ResponseFormat = `interface Feedback {
  overallScore: number; // max 100
  ATS: {
    score: number; // rate based on ATS suitability
    tips: {
      type: "good" | "improve";
      tip: string; // give 3-4 tips
    }[];
  };
  toneAndStyle: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string; // make it a short "title" for the actual explanation
      explanation: string; // explain in detail here
    }[]; // give 3-4 tips
  };
  content: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
  structure: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
  skills: {
    score: number; // max 100
    tips: {
      type: "good" | "improve";
      tip: string;
      explanation: string;
    }[]; // give 3-4 tips
  };
}`

// PrepareInstruction assembles the instruction payload for a submission.
func PrepareInstruction(jobTitle, jobDescription string) Instruction {
	return Instruction{
		JobTitle:       jobTitle,
		JobDescription: jobDescription,
		ResponseFormat: ResponseFormat,
	}
}

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildFeedbackPrompt creates the prompt for resume feedback generation.
func (pb *PromptBuilder) BuildFeedbackPrompt(resumeText string, inst Instruction) string {
	return fmt.Sprintf(`You are an expert in ATS (Applicant Tracking System) and resume analysis.
Analyze and rate this resume and suggest how to improve it.
The rating can be low if the resume is bad.
Be thorough and detailed. Don't be afraid to point out any mistakes or areas for improvement.
If there is a lot to improve, don't hesitate to give low scores. This is to help the user to improve their resume.

The job title is: %s
The job description is:
%s

RESUME:
%s

Provide the feedback using the following format:
%s

Return the analysis as a JSON object, without any other text and without the backticks.
Do not include any other text or comments.`,
		inst.JobTitle, inst.JobDescription, resumeText, inst.ResponseFormat)
}
