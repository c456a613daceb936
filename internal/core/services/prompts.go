package services

import (
	"fmt"
	"strings"
)

// Prompts are written in Spanish because the disclosure corpus is
// Spanish and the analysts consuming the answers work in Spanish.

// buildMetricsPrompt asks for a strict-JSON metrics record. The model
// must leave unknown figures null rather than inventing them, and must
// report the currency symbol it saw so normalization can decide whether
// to convert.
func buildMetricsPrompt(issuerName, context string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `Eres un analista financiero especializado en el mercado de valores de Nicaragua.
Extrae las métricas financieras más recientes del emisor "%s" a partir de los documentos siguientes.

REGLAS ESTRICTAS:
1. Usa ÚNICAMENTE cifras que aparezcan en los documentos. Si un dato no aparece, usa null. NUNCA inventes valores.
2. Prioriza los estados financieros auditados más recientes.
3. Expresa los montos en MILLONES. Si el documento reporta en córdobas (C$, NIO), mantén las cifras en córdobas y declara el símbolo encontrado; la conversión se hace después.
4. En "simbolo_encontrado" reporta el símbolo o código de moneda tal como aparece en el documento ("C$", "US$", "NIO", "USD").
5. Responde SOLO con el JSON, sin texto adicional ni bloques de código.

FORMATO DE RESPUESTA:
{
  "liquidez": {"activoCorriente": null, "pasivoCorriente": null, "ratioCirculante": null, "capitalTrabajo": null},
  "solvencia": {"activoTotal": null, "pasivoTotal": null, "patrimonio": null, "deudaPatrimonio": null, "deudaActivos": null},
  "rentabilidad": {"ingresosTotales": null, "gastosFinancieros": null, "utilidadNeta": null, "margenNeto": null, "roe": null, "roa": null},
  "eficiencia": {"rotacionActivos": null, "rotacionCartera": null},
  "capital": {"activosTotales": null, "pasivos": null, "patrimonio": null},
  "calificacion": {"rating": null, "perspectiva": null, "fecha": null},
  "metadata": {"periodo": "", "moneda": "", "simbolo_encontrado": "", "fuente": ""}
}

DOCUMENTOS:
%s`, issuerName, context)

	return sb.String()
}

// buildAnswerPrompt frames a grounded analyst answer. The model may
// only cite the provided context and must say so when the context does
// not cover the question.
func buildAnswerPrompt(query, context, analysisType string) string {
	role := "Eres un analista financiero experto en el mercado de valores de Nicaragua."
	if analysisType == "comparative" {
		role += " Compara a los emisores de forma equilibrada, señalando fortalezas y debilidades de cada uno con cifras concretas."
	}

	return fmt.Sprintf(`%s

Responde la pregunta usando EXCLUSIVAMENTE la información de los documentos proporcionados.
- Cita cifras exactas con su período y documento de origen.
- Si los documentos no contienen la información, dilo explícitamente.
- Responde en español, en tono profesional y conciso.

DOCUMENTOS:
%s

PREGUNTA: %s`, role, context, query)
}

// buildInsightsPrompt asks for a short executive read on an issuer,
// returned as strict JSON so the caller can attach sentiment and
// confidence to the text.
func buildInsightsPrompt(issuerName, context string) string {
	return fmt.Sprintf(`Eres un analista financiero senior. Genera un resumen ejecutivo del emisor "%s" basado únicamente en los documentos siguientes.

Responde SOLO con este JSON, sin texto adicional:
{
  "insight": "resumen ejecutivo de 3 a 5 oraciones con cifras concretas",
  "sentiment": "positive" | "neutral" | "negative",
  "confidence": 0.0 a 1.0,
  "metrics": ["métricas clave mencionadas"],
  "citations": ["títulos de los documentos citados"]
}

DOCUMENTOS:
%s`, issuerName, context)
}
