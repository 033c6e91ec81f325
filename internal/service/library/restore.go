package library

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/auditready/auditready-backend/internal/domain/errors"
	"github.com/auditready/auditready-backend/internal/domain/standards"
)

// Markers of the two COPY sections in a plain-text pg_dump backup
const (
	standardsCopyMarker    = "COPY public.standards_library"
	requirementsCopyMarker = "COPY public.requirements_library"
	copyTerminator         = `\.`
)

// Column counts of the dump's tab-separated rows. Requirements rows carry
// the full 17-column structure; anything shorter is a corrupt line.
const (
	standardsMinColumns    = 3
	requirementsMinColumns = 17
)

// ImportReport summarizes one backup restoration
type ImportReport struct {
	StandardsFound      int            `json:"standards_found"`
	StandardsCreated    int            `json:"standards_created"`
	RequirementsFound   int            `json:"requirements_found"`
	RequirementsCreated int            `json:"requirements_created"`
	Skipped             int            `json:"skipped"`
	Orphaned            int            `json:"orphaned"`
	CountsByStandard    map[string]int `json:"counts_by_standard"`
}

// ImportBackup restores the standards and requirements library from a
// plain-text pg_dump stream. Rows keep their backup UUIDs so requirement
// foreign keys survive the round trip, and existing rows are never
// overwritten, so re-running an import is safe.
func (s *service) ImportBackup(ctx context.Context, backup io.Reader) (*ImportReport, error) {
	standardRows, requirementRows, err := parseBackupSections(backup)
	if err != nil {
		return nil, err
	}
	if len(standardRows) == 0 {
		return nil, errors.NewValidationError("EMPTY_BACKUP", "backup contains no standards_library section")
	}

	report := &ImportReport{CountsByStandard: make(map[string]int)}
	known := make(map[uuid.UUID]*standards.Standard, len(standardRows))

	for _, row := range standardRows {
		standard, err := standardFromBackupRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed standard row", zap.Error(err))
			report.Skipped++
			continue
		}
		report.StandardsFound++

		created, err := s.standards.UpsertStandard(ctx, standard)
		if err != nil {
			return nil, errors.NewInternalError("failed to restore standard").WithCause(err)
		}
		if created {
			report.StandardsCreated++
		}
		known[standard.ID] = standard
	}

	for _, row := range requirementRows {
		requirement, err := requirementFromBackupRow(row)
		if err != nil {
			s.logger.Warn("skipping malformed requirement row", zap.Error(err))
			report.Skipped++
			continue
		}
		report.RequirementsFound++

		standard, ok := known[requirement.StandardID]
		if !ok {
			// requirement references a standard absent from the backup
			report.Orphaned++
			continue
		}

		created, err := s.requirements.UpsertRequirement(ctx, requirement)
		if err != nil {
			return nil, errors.NewInternalError("failed to restore requirement").WithCause(err)
		}
		if created {
			report.RequirementsCreated++
		}
		report.CountsByStandard[standard.DisplayName()]++
	}

	s.logger.Info("backup import completed",
		zap.Int("standards", report.StandardsFound),
		zap.Int("standards_created", report.StandardsCreated),
		zap.Int("requirements", report.RequirementsFound),
		zap.Int("requirements_created", report.RequirementsCreated),
		zap.Int("skipped", report.Skipped),
		zap.Int("orphaned", report.Orphaned),
	)
	return report, nil
}

// parseBackupSections walks the dump once, collecting the data lines of the
// two COPY ... FROM stdin sections.
func parseBackupSections(backup io.Reader) (standardRows, requirementRows [][]string, err error) {
	const (
		scanOutside = iota
		scanStandards
		scanRequirements
	)
	state := scanOutside

	scanner := bufio.NewScanner(backup)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		switch state {
		case scanOutside:
			if strings.HasPrefix(line, standardsCopyMarker) {
				state = scanStandards
			} else if strings.HasPrefix(line, requirementsCopyMarker) {
				state = scanRequirements
			}
		case scanStandards, scanRequirements:
			if line == copyTerminator {
				state = scanOutside
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			fields := splitCopyLine(line)
			if state == scanStandards {
				standardRows = append(standardRows, fields)
			} else {
				requirementRows = append(requirementRows, fields)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, errors.NewInternalError("failed to read backup stream").WithCause(err)
	}
	return standardRows, requirementRows, nil
}

// splitCopyLine splits one COPY data line and decodes the text-format
// escapes. \N stays as an empty string; the caller treats absence and
// empty alike.
func splitCopyLine(line string) []string {
	parts := strings.Split(line, "\t")
	for i, p := range parts {
		parts[i] = decodeCopyField(p)
	}
	return parts
}

func decodeCopyField(field string) string {
	if field == `\N` {
		return ""
	}
	if !strings.ContainsRune(field, '\\') {
		return field
	}
	var b strings.Builder
	b.Grow(len(field))
	for i := 0; i < len(field); i++ {
		if field[i] != '\\' || i+1 == len(field) {
			b.WriteByte(field[i])
			continue
		}
		i++
		switch field[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte(field[i])
		}
	}
	return b.String()
}

// standardFromBackupRow maps a standards_library dump row: id, name,
// version lead the row. The slug is derived since the legacy table had none.
func standardFromBackupRow(row []string) (*standards.Standard, error) {
	if len(row) < standardsMinColumns {
		return nil, errors.NewValidationError("MALFORMED_ROW", "standards row has too few columns")
	}
	id, err := uuid.Parse(row[0])
	if err != nil {
		return nil, errors.NewValidationError("MALFORMED_ROW", "standards row has an invalid id")
	}

	standard, err := standards.NewStandard(slugify(row[1], row[2]), row[1], row[2], standards.TypeFramework)
	if err != nil {
		return nil, err
	}
	standard.ID = id
	return standard, nil
}

// requirementFromBackupRow maps a requirements_library dump row:
// id, standard_id, control_id, title, description, category, priority,
// parent_requirement_id, order_index, created_at, updated_at, is_active,
// tags, official_description, implementation_guidance,
// audit_ready_guidance, section.
func requirementFromBackupRow(row []string) (*standards.Requirement, error) {
	if len(row) < requirementsMinColumns {
		return nil, errors.NewValidationError("MALFORMED_ROW", "requirements row has too few columns")
	}
	id, err := uuid.Parse(row[0])
	if err != nil {
		return nil, errors.NewValidationError("MALFORMED_ROW", "requirements row has an invalid id")
	}
	standardID, err := uuid.Parse(row[1])
	if err != nil {
		return nil, errors.NewValidationError("MALFORMED_ROW", "requirements row has an invalid standard id")
	}

	priority := standards.Priority(strings.ToLower(row[6]))
	if !priority.IsValid() {
		priority = standards.PriorityMedium
	}

	requirement, err := standards.NewRequirement(standardID, row[2], row[3], row[13], priority)
	if err != nil {
		return nil, err
	}
	requirement.ID = id
	requirement.Category = row[5]
	requirement.ImplementationGuidance = row[14]
	requirement.CustomGuidance = row[15]
	requirement.Section = row[16]
	requirement.Tags = parseArrayLiteral(row[12])
	requirement.IsActive = row[11] != "f" && row[11] != "false"
	return requirement, nil
}

// parseArrayLiteral decodes a Postgres array literal like {a,"b c"} into a
// string slice. Good enough for the tag vocabulary in the dumps, which
// never nests or embeds commas inside quotes.
func parseArrayLiteral(literal string) []string {
	literal = strings.TrimSpace(literal)
	if literal == "" || literal == "{}" {
		return nil
	}
	literal = strings.TrimPrefix(literal, "{")
	literal = strings.TrimSuffix(literal, "}")
	parts := strings.Split(literal, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func slugify(name, version string) string {
	s := strings.ToLower(strings.TrimSpace(name + " " + version))
	var b strings.Builder
	b.Grow(len(s))
	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
