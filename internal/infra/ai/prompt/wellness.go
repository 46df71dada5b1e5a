package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/glowguide/internal/domain/ai"
)

const noFace = "No face detected in the image."

// GetSystemPrompt sets the persona and the output contract.
func GetSystemPrompt() string {
	return `You analyze faces like a pro: as a physiognomist, nutritionist, psychosomatic expert, and women's health specialist. You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema given by the user. preview_insights must contain between 1 and 5 items and every star_rating must be an integer from 1 to 5.`
}

// GetUserPrompt builds the question list and schema around the face
// detection summary.
func GetUserPrompt(faces []ai.Face) string {
	return fmt.Sprintf(`Face detection data: %s

Answer the following questions:
1. How old do I look visually?
2. What deficiencies can be detected based on facial expressions, skin tone, eyes, jawline, lips, and cheeks?
3. Are there visible signs of possible food intolerances or reactions?
4. What should I pay attention to in terms of women's health?
5. What psycho-emotional states might have affected my current appearance?
6. What internal conflicts and personality traits are reflected in my face?
7. What would you recommend I change in my diet, lifestyle, rest habits, mindset, and thinking patterns?

Respond with this JSON schema:
%s

Be specific, detailed, and personalized in your analysis. Draw from the facial detection data and provide actionable insights.`, DescribeFaces(faces), schema)
}

// DescribeFaces renders the first detected face as a bullet list.
func DescribeFaces(faces []ai.Face) string {
	if len(faces) == 0 {
		return noFace
	}
	f := faces[0]
	var b strings.Builder
	b.WriteString("Face detected with the following characteristics:")
	fmt.Fprintf(&b, "\n- Detection confidence: %.1f%%", f.DetectionConfidence*100)
	for _, l := range []struct{ name, v string }{
		{"Joy", f.Joy},
		{"Sorrow", f.Sorrow},
		{"Anger", f.Anger},
		{"Surprise", f.Surprise},
		{"Under-exposed", f.UnderExposed},
		{"Blurred", f.Blurred},
		{"Headwear", f.Headwear},
	} {
		fmt.Fprintf(&b, "\n- %s likelihood: %s", l.name, likelihood(l.v))
	}
	return b.String()
}

func likelihood(v string) string {
	if v == "" {
		return "UNKNOWN"
	}
	return v
}

const schema = `{
  "perceived_age": number,
  "confidence": number (0-1),
  "visual_age_analysis": "detailed explanation of perceived age",
  "deficiencies": {
    "skin_tone": "observations about skin tone and potential deficiencies",
    "eyes": "observations about eyes and what they reveal",
    "jawline": "observations about jawline and tension",
    "lips": "observations about lips and hydration/nutrition",
    "cheeks": "observations about cheeks and overall health",
    "nutrient_flags": ["list of potential nutrient deficiencies"]
  },
  "food_intolerances": {
    "signs_present": boolean,
    "potential_triggers": ["list of potential food triggers"],
    "recommendations": "testing and elimination recommendations"
  },
  "womens_health": {
    "hormonal_indicators": "observations about potential hormonal patterns",
    "recommendations": "specific women's health recommendations"
  },
  "psycho_emotional_states": {
    "observed_states": ["list of observed emotional/psychological states"],
    "stress_indicators": "signs of stress or emotional patterns",
    "energy_levels": "assessment of energy and vitality"
  },
  "internal_conflicts": {
    "personality_traits": ["observed personality traits"],
    "potential_conflicts": ["internal conflicts or tensions"],
    "behavioral_patterns": "patterns reflected in facial expression"
  },
  "recommendations": {
    "diet": {"eliminate": [], "add": [], "supplements": ["with dosages"]},
    "lifestyle": {"daily_habits": [], "exercise": "", "stress_management": []},
    "rest": {"sleep_hygiene": [], "recovery": []},
    "mindset": {"mental_practices": [], "emotional_work": [], "thinking_patterns": []}
  },
  "preview_insights": [
    {
      "star_rating": number (1-5),
      "emotional_hook": "compelling insight about their wellness",
      "conversion_tease": "what they'll discover in the full plan",
      "category": "category name"
    }
  ],
  "daily_rituals": [
    {"category": "category name", "rituals": [{"title": "ritual name", "description": "detailed description"}]}
  ],
  "product_recommendations": [
    {
      "name": "product name",
      "dosage": "how to use",
      "reason": "why recommended for this person",
      "expected_result": "what to expect",
      "price_band": "price range",
      "timeline": "when to expect results"
    }
  ]
}`
