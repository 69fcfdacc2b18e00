package agents

// Prompts instruct the model to answer with a single JSON value, optionally
// inside a markdown code fence, which formatting.Parse accepts either way.

const recipientsPrompt = `You are analyzing a document that will be sent for electronic signature.

Identify every person who must receive the document. Look for signature
blocks, "prepared for" and "attention" lines, party names, and contact
sections. For each person, extract their email address and name.

Respond with a JSON array only. Each element:
{
  "email": "person@example.com",
  "first_name": "First",
  "last_name": "Last"
}

Use empty strings for values the document does not provide. Do not invent
people or addresses. Order the array as the people appear in the document.

Document text:

%s`

const layoutPrompt = `You are analyzing the text of a %d-page document to decide where
signature fields should be placed.

Find the page containing the signature section and estimate its geometry in
PDF points (72 points per inch, origin at the bottom-left corner of the
page, standard letter pages are 612x792).

Respond with a JSON object only:
{
  "page": 1,
  "signature_column_x": 350,
  "first_row_y": 180,
  "row_height": 60
}

"page" is 1-based. "first_row_y" is the baseline of the topmost signature
row; subsequent rows descend by "row_height". If no signature section is
evident, place the fields on the last page in its lower half.

Document text:

%s`

const draftPrompt = `You are writing a short, professional follow-up email about a document
that is awaiting signature.

Document: %s
Recipient: %s (role: %s)
Sent on: %s
Days pending: %d

Write a polite reminder asking the recipient to review and sign. Keep it
under 150 words, reference the document by name, and note how long it has
been waiting. Do not include a signature block or placeholders.

Respond with a JSON object only:
{
  "subject": "...",
  "body_html": "<p>...</p>"
}

"body_html" is the email body as simple HTML paragraphs.`
