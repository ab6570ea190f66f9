package mcpserver

// PromptGuide describes how draftdeck turns project prompts into model
// requests, so MCP clients can write prompts that work well.
const PromptGuide = `# draftdeck Prompt Guide

A project is a Word document (` + "`docx`" + `) or a slide deck (` + "`pptx`" + `) made of
ordered sections. Every section is generated separately.

## Project prompt

The project ` + "`prompt`" + ` is the topic. For each section the model receives:

    Write content for section titled '<section title>' about: <prompt>

Keep the prompt to one or two sentences describing audience and subject.
Put structure in section titles, not in the prompt.

## Outlines

` + "`suggest_outline`" + ` asks for N titles about the prompt (or the project title
when the prompt is empty). Review them, then pass the ones you keep to
` + "`apply_outline`" + `. In a deck every applied section becomes a slide.

## Refinement

` + "`refine_section`" + ` sends the current content with your instructions:

    Refine the following section content with instructions: <instructions>
    Current content:
    <content>

Instructions work best as short imperatives: "make it shorter",
"turn into five bullets", "add a closing sentence".

## Content formatting

Exports understand a small subset of Markdown in section content:

- ` + "`#`, `##`, `###`" + ` headings
- ` + "`-`, `*`, `•`" + ` or ` + "`1.`" + ` bullets
- plain paragraphs separated by blank lines

Anything else is exported as plain text.
`
