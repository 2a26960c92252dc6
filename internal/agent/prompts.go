package agent

import (
	"fmt"
	"strings"
)

// scoringGuide is shared across agent prompts to keep score calibration
// consistent between sources.
const scoringGuide = `Scoring guide (use this to calibrate your score):
  0.7 to 1.0  = strongly positive (e.g. major earnings beat, analyst upgrades across the board)
  0.3 to 0.7  = moderately positive (e.g. generally favourable news, mild optimism)
  -0.3 to 0.3 = neutral or mixed signals
  -0.7 to -0.3 = moderately negative (e.g. earnings miss, downgrades)
  -1.0 to -0.7 = strongly negative (e.g. fraud allegations, major lawsuit, mass layoffs)`

const opinionJSONContract = `Return a JSON object with exactly these fields:
- "score": float between -1.0 and 1.0
- "label": one of "positive", "negative", or "neutral"
- "reasoning": one sentence explaining the key sentiment driver`

const jsonOnly = `Respond with ONLY the JSON object, no markdown, no extra text.`

// buildNewsPrompt creates the prompt for the news sentiment agent.
func buildNewsPrompt(ticker string, headlines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial sentiment analyst. Analyze the following news headlines for the stock ticker %s.\n\nHeadlines:\n", ticker)
	for _, h := range headlines {
		fmt.Fprintf(&b, "- %s\n", h)
	}
	b.WriteString("\nPay close attention to numerical values such as earnings figures, revenue numbers, and percentage changes -- these are often the strongest sentiment signals.\n\n")
	b.WriteString(scoringGuide)
	b.WriteString("\n\n")
	b.WriteString(opinionJSONContract)
	b.WriteString("\n- \"key_themes\": list of up to 3 short strings (e.g. [\"earnings beat\", \"product launch\"])\n\n")
	b.WriteString(jsonOnly)
	return b.String()
}

// buildSocialPrompt creates the prompt for the social sentiment agent.
func buildSocialPrompt(ticker string, mentions, upvotes, rank, rankChange int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial sentiment analyst specializing in retail investor sentiment. Analyze the following Reddit/social media data for stock ticker %s.\n\n", ticker)
	fmt.Fprintf(&b, "ApeWisdom Data (Reddit aggregated):\n- Mentions in last 24h: %d\n- Upvotes in last 24h: %d\n- Current rank among most-discussed stocks: #%d\n- Rank change vs yesterday: %d (positive = rising interest)\n\n", mentions, upvotes, rank, rankChange)
	b.WriteString(`CRITICAL: These metrics measure ATTENTION VOLUME, not sentiment direction. Interpret carefully:
- Low mentions / high rank does NOT mean negative sentiment. It often just means the stock isn't a meme or speculative play. Large-cap stocks like AAPL, MSFT, META often rank low on Reddit because institutional investors (not Redditors) drive their price.
- Only score negatively if there are explicit signals of bearish retail sentiment, like a sharp drop in mentions after a surge (interest fading after hype), or if the context suggests panic selling.
- A stock with low Reddit buzz should generally get a NEUTRAL score (near 0), not a negative score.
- High mentions + high upvotes = strong retail interest (could be bullish or bearish -- use context).
- Top-10 stocks typically get 500+ mentions per day. Most established large-caps sit at rank 50-200 normally.

`)
	b.WriteString(scoringGuide)
	b.WriteString("\n\n")
	b.WriteString(opinionJSONContract)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly)
	return b.String()
}

// buildAnalystPrompt creates the prompt for the analyst buzz agent.
// analystData is a pre-marshalled JSON summary of the fetched data.
func buildAnalystPrompt(ticker, analystData string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial sentiment analyst. Analyze the following Wall Street analyst data for stock ticker %s.\n\nAnalyst Data:\n%s\n\n", ticker, analystData)
	b.WriteString("Pay close attention to numerical values: price target vs current price spread, the ratio of buy/hold/sell ratings, and the number of analysts covering the stock. A wide consensus among many analysts is a stronger signal than a few scattered opinions.\n\n")
	b.WriteString(scoringGuide)
	b.WriteString("\n\n")
	b.WriteString(opinionJSONContract)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly)
	return b.String()
}

// buildWebPrompt creates the prompt for the web search agent.
func buildWebPrompt(ticker string, snippets []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a financial sentiment analyst. Analyze the following web search snippets about stock ticker %s.\n\nWeb Snippets:\n", ticker)
	for _, s := range snippets {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\nFocus on the overall tone across all snippets. Look for recurring themes and pay attention to any concrete numbers, forecasts, or analyst opinions mentioned in the text.\n\n")
	b.WriteString(scoringGuide)
	b.WriteString("\n\n")
	b.WriteString(opinionJSONContract)
	b.WriteString("\n\n")
	b.WriteString(jsonOnly)
	return b.String()
}

// buildDebatePrompt creates the prompt for the bull vs bear debate stage.
// agentResults is a pre-marshalled JSON summary of all agent opinions.
func buildDebatePrompt(ticker, agentResults string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior financial analyst moderating a sentiment debate for stock ticker %s.\n\nThe following specialized agents have produced these sentiment readings:\n%s\n\n", ticker, agentResults)
	b.WriteString(`Your task:
1. Identify the STRONGEST arguments for a bullish outlook (the bull case). Cite specific evidence from the agent outputs.
2. Identify the STRONGEST arguments for a bearish or cautious outlook (the bear case). Cite specific evidence.
3. Weigh the evidence: which side has more concrete, data-backed support? Write a resolution explaining your judgement.

Return a JSON object with exactly these fields:
- "bull_case": string (1-2 sentences, cite specific data points)
- "bear_case": string (1-2 sentences, cite specific data points)
- "resolution": string (1 sentence, state which side wins and why)
- "key_drivers": list of up to 3 short strings naming the most important sentiment drivers

`)
	b.WriteString(jsonOnly)
	return b.String()
}

// buildSummaryPrompt creates the prompt for the final narrative summary.
// Unlike the other prompts this one asks for plain text, not JSON.
func buildSummaryPrompt(ticker string, score float64, label string, confidence float64, resolution string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a senior investment analyst. Summarize the overall market sentiment for stock ticker %s.\n\n", ticker)
	fmt.Fprintf(&b, "Sentiment Score: %g (range: -1.0 to 1.0)\n", score)
	fmt.Fprintf(&b, "Sentiment Label: %s\n", label)
	fmt.Fprintf(&b, "Confidence: %g (range: 0.0 to 1.0, higher = more agreement across sources)\n\n", confidence)
	fmt.Fprintf(&b, "Debate Resolution: %s\n\n", resolution)
	b.WriteString("Write a concise 2-3 sentence summary of the sentiment outlook, in a factual and objective tone. Respond with ONLY the summary text, no markdown, no preamble.")
	return b.String()
}
