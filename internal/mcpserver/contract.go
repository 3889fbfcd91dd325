package mcpserver

// DataFormatContract describes the project data that tools read and write
// and that export files contain.
const DataFormatContract = `# Craftfolder Data Format

Exports and imports are a JSON array of projects. Field names are camelCase,
timestamps are Unix milliseconds, ids are opaque strings.

## Project

` + "```" + `json
{
  "id": "5f0c...",
  "title": "Winter Scarf",              // REQUIRED, trimmed, non-blank
  "craftType": "Crochet",               // "Crochet" | "Cross Stitch"
  "notes": "",
  "photos": [ProjectPhoto],
  "sessions": [Session],
  "timeline": [TimelineItem],           // newest first when read
  "coverPhotoId": "",                   // optional, must name a photo
  "patternWishlist": [Pattern],
  "defaults": {"counters": ["Rows"]},   // counters seeded into new sessions
  "createdAt": 1700000000000
}
` + "```" + `

## Session

A finished tracking run. ` + "`" + `counters.values` + "`" + ` maps counter names to
non-negative values; ` + "`" + `seconds` + "`" + ` is the time the timer ran.

` + "```" + `json
{"id": "...", "createdAt": 1700000000000, "seconds": 1800,
 "counters": {"values": {"Rows": 12}}, "notes": "", "isMilestone": false}
` + "```" + `

Older files with flat ` + "`" + `{"rows", "increase", "decrease", "seconds"}` + "`" + `
counters are upgraded on import.

## ProjectPhoto and Pattern

` + "```" + `json
{"id": "...", "uri": "/api/media/<uuid>.jpg", "createdAt": 0, "title": "", "notes": ""}
{"id": "...", "title": "Fox", "link": "https://...", "imageUri": "",
 "pdf": {"uri": "...", "name": "fox.pdf", "addedAt": 0}, "createdAt": 0}
` + "```" + `

## TimelineItem

` + "```" + `json
{"id": "...", "type": "session" | "photo" | "pattern", "createdAt": 0,
 "sessionId": "...", "photoId": "...", "patternId": "...", "annotations": ["..."]}
` + "```" + `

Exactly one of sessionId, photoId or patternId is set, matching type. An id
that no longer resolves is shown as a missing entry, never an error.
Only pattern items carry annotations.

## Rules

1. **Title is required.** Blank titles are rejected.
2. **Counters never go below zero.**
3. **A session needs at least one counter** to be saved.
4. **Import modes:** ` + "`" + `merge` + "`" + ` appends, giving a colliding id a fresh one;
   ` + "`" + `replace` + "`" + ` swaps the whole list.
5. **Photos** are added with the ` + "`" + `add_photo` + "`" + ` tool as base64 data URIs
   (png, jpeg, gif, webp). Remote URLs are not fetched.

## Collection item

` + "```" + `json
{"id": "...", "name": "DMC 310", "type": "Yarn" | "Thread", "brand": "",
 "colour": "Black", "material": "Cotton", "weight": "", "stock": 1}
` + "```" + `
`
