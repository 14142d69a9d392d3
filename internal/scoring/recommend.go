package scoring

import (
	"fmt"
	"math"
	"strconv"

	"facettes/internal/aggregate"
)

// Recommend returns the action text for zone. score is the displayed
// (rounded) continuous score.
func Recommend(zone Zone, m aggregate.Metrics, score float64) string {
	volume := groupThousands(m.VolumeTotal)
	kd := strconv.FormatFloat(math.Round(m.KDMean), 'f', 0, 64)
	s := strconv.FormatFloat(score, 'f', -1, 64)

	switch zone {
	case QuickWin:
		return fmt.Sprintf("Indexer en priorité. Volume %s/mois, KD faible (%s). Optimiser la balise title et le contenu de la page facette.", volume, kd)
	case FortPotentiel:
		return fmt.Sprintf("Indexer avec stratégie de contenu renforcé (KD élevé : %s). Renforcer le maillage interne et envisager du contenu éditorial de soutien.", kd)
	case Niche:
		return fmt.Sprintf("Potentiel limité mais accessible (KD %s). Indexer si le coût de création/maintenance est faible. Volume : %s/mois.", kd, volume)
	case Surveiller:
		return fmt.Sprintf("Zone intermédiaire (score %s/100). Surveiller l'évolution du volume et de la concurrence avant d'investir.", s)
	case Ignorer:
		fallthrough
	default:
		return fmt.Sprintf("Ne pas indexer. Volume insuffisant (%s/mois) et/ou score trop faible (%s/100).", volume, s)
	}
}

// groupThousands formats n with a space between groups of three digits.
func groupThousands(n int) string {
	digits := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, digits = "-", digits[1:]
	}

	var out []byte
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, digits[i])
	}
	return sign + string(out)
}
