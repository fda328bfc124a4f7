package mcpserver

// TagSyntaxContract describes how journal blocks record habits so that LLM
// consumers write entries the tracker picks up.
const TagSyntaxContract = `# Habit Tag Syntax

Habits are recorded in **journal pages** only. Every block (bullet) whose
text contains the ` + "`" + `#habit` + "`" + ` tag counts as one occurrence of a habit on
that journal day. Nested blocks are scanned too.

## Structure

` + "```" + `markdown
- #habit Exercise
- #habit Meditation 7:00 AM
- Morning routine
	- #habit Reading 21:30 #books
` + "```" + `

## Rules

1. **Tag.** ` + "`" + `#habit` + "`" + ` (any letter case) followed by at least one space.
2. **Name.** Everything after the tag up to the next ` + "`" + `#` + "`" + `, a clock
   time, a line break or the end of the block. Surrounding spaces are
   trimmed. A block with an empty name is ignored.
3. **Exact names.** Names are compared as written: ` + "`" + `Exercise` + "`" + ` and
   ` + "`" + `exercise` + "`" + ` are two different habits.
4. **Time (optional).** The first clock time anywhere in the block:
   ` + "`" + `7:00 AM` + "`" + `, ` + "`" + `07:00pm` + "`" + ` (hours 1-12 with AM/PM) or ` + "`" + `18:30` + "`" + `
   (hours 0-23). It is kept exactly as written.
5. **One entry per block.** Only the first ` + "`" + `#habit` + "`" + ` tag of a block is read.
6. **Dates** come from the journal page, never from the block text.

## Example

` + "```" + `markdown
- #habit Meditation 06:30
- Gym session #habit Exercise #health
- 10:15 coffee, then #habit Reading
` + "```" + `

yields Meditation (06:30), Exercise (no time) and Reading (10:15).
`
