package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"viralyst_dev_v1_202608/internal/api/dto"
	"viralyst_dev_v1_202608/internal/model"
	"viralyst_dev_v1_202608/internal/repository"
)

// ==================== 常量 ====================

// maxSegments 细分画像数量上限（行数不足时退化为行数）
const maxSegments = 3

// ==================== 服务 ====================

// SegmentService 客户表细分：上传表格 -> 聚类 -> 受众画像
type SegmentService struct {
	personaRepo repository.PersonaRepository
}

// NewSegmentService 创建细分服务
func NewSegmentService(personaRepo repository.PersonaRepository) *SegmentService {
	return &SegmentService{personaRepo: personaRepo}
}

// ==================== 表格解析 ====================

// customerTable 解析后的客户表
type customerTable struct {
	headers []string
	rows    [][]string // 与 headers 等宽，缺列补空串
	numeric []bool     // 每列是否为数值列
}

// parseWorkbook 读取 xlsx 首个工作表
func parseWorkbook(r io.Reader) (*customerTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("打开表格失败: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("表格中没有工作表")
	}

	rawRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %v", err)
	}
	if len(rawRows) < 2 {
		return nil, fmt.Errorf("表格中没有数据行")
	}

	headers := rawRows[0]
	width := len(headers)

	var rows [][]string
	for _, raw := range rawRows[1:] {
		row := make([]string, width)
		empty := true
		for i := 0; i < width; i++ {
			if i < len(raw) {
				row[i] = strings.TrimSpace(raw[i])
			}
			if row[i] != "" {
				empty = false
			}
		}
		// 整行为空直接跳过
		if !empty {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("表格中没有数据行")
	}

	return &customerTable{
		headers: headers,
		rows:    rows,
		numeric: classifyColumns(rows, width),
	}, nil
}

// classifyColumns 判定数值列：该列所有非空单元格都能解析为数字
func classifyColumns(rows [][]string, width int) []bool {
	numeric := make([]bool, width)
	for col := 0; col < width; col++ {
		hasValue := false
		allNumeric := true
		for _, row := range rows {
			cell := row[col]
			if cell == "" {
				continue
			}
			hasValue = true
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				allNumeric = false
				break
			}
		}
		numeric[col] = hasValue && allNumeric
	}
	return numeric
}

// ==================== 特征工程 ====================

// buildFeatures 把表格编码为特征矩阵
// 数值列直接取值（缺失补 0），类别列按首次出现顺序做标签编码，
// 最后逐列标准化，避免量纲大的列主导距离
func buildFeatures(table *customerTable) [][]float64 {
	width := len(table.headers)
	features := make([][]float64, len(table.rows))
	for i := range features {
		features[i] = make([]float64, width)
	}

	for col := 0; col < width; col++ {
		if table.numeric[col] {
			for i, row := range table.rows {
				v, _ := strconv.ParseFloat(row[col], 64)
				features[i][col] = v
			}
		} else {
			codes := make(map[string]float64)
			for i, row := range table.rows {
				code, ok := codes[row[col]]
				if !ok {
					code = float64(len(codes))
					codes[row[col]] = code
				}
				features[i][col] = code
			}
		}
	}

	// 标准化
	for col := 0; col < width; col++ {
		mean, std := columnStats(features, col)
		for i := range features {
			if std > 0 {
				features[i][col] = (features[i][col] - mean) / std
			} else {
				features[i][col] = 0
			}
		}
	}

	return features
}

func columnStats(features [][]float64, col int) (mean, std float64) {
	n := float64(len(features))
	for _, row := range features {
		mean += row[col]
	}
	mean /= n

	var variance float64
	for _, row := range features {
		d := row[col] - mean
		variance += d * d
	}
	std = math.Sqrt(variance / n)
	return mean, std
}

// ==================== 聚类 ====================

// rowPoint 带行号的观测点，聚类后能找回原始行
type rowPoint struct {
	row    int
	coords clusters.Coordinates
}

func (p rowPoint) Coordinates() clusters.Coordinates {
	return p.coords
}

func (p rowPoint) Distance(point clusters.Coordinates) float64 {
	return p.coords.Distance(point)
}

// clusterRows 聚类，返回每簇包含的行号
func clusterRows(features [][]float64, k int) ([][]int, error) {
	var observations clusters.Observations
	for i, row := range features {
		coords := make(clusters.Coordinates, len(row))
		copy(coords, row)
		observations = append(observations, rowPoint{row: i, coords: coords})
	}

	km := kmeans.New()
	result, err := km.Partition(observations, k)
	if err != nil {
		return nil, fmt.Errorf("聚类失败: %v", err)
	}

	groups := make([][]int, 0, len(result))
	for _, cluster := range result {
		var rows []int
		for _, obs := range cluster.Observations {
			if p, ok := obs.(rowPoint); ok {
				rows = append(rows, p.row)
			}
		}
		if len(rows) > 0 {
			sort.Ints(rows)
			groups = append(groups, rows)
		}
	}

	// 大簇在前，画像编号稳定
	sort.Slice(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})

	return groups, nil
}

// ==================== 画像描述 ====================

// describeSegment 生成画像描述与统计
// 数值列取均值，类别列取众数
func describeSegment(table *customerTable, rows []int) (string, datatypes.JSONMap) {
	var parts []string
	stats := datatypes.JSONMap{}

	for col, header := range table.headers {
		if table.numeric[col] {
			var sum float64
			count := 0
			for _, r := range rows {
				if table.rows[r][col] == "" {
					continue
				}
				v, _ := strconv.ParseFloat(table.rows[r][col], 64)
				sum += v
				count++
			}
			if count == 0 {
				continue
			}
			avg := math.Round(sum/float64(count)*10) / 10
			parts = append(parts, fmt.Sprintf("Average %s: %v", header, avg))
			stats[header] = avg
		} else {
			counts := make(map[string]int)
			for _, r := range rows {
				if v := table.rows[r][col]; v != "" {
					counts[v]++
				}
			}
			mode := ""
			best := 0
			for v, c := range counts {
				if c > best || (c == best && v < mode) {
					mode = v
					best = c
				}
			}
			if mode == "" {
				continue
			}
			parts = append(parts, fmt.Sprintf("Most common %s: %s", header, mode))
			stats[header] = mode
		}
	}

	return strings.Join(parts, ", "), stats
}

// ==================== 分析入口 ====================

// AnalyzeWorkbook 解析上传的客户表并生成受众画像
// 每次分析整体替换旧画像
func (s *SegmentService) AnalyzeWorkbook(ctx context.Context, r io.Reader, filename string) (*dto.AnalyzeSegmentsResponse, error) {
	table, err := parseWorkbook(r)
	if err != nil {
		return nil, err
	}

	features := buildFeatures(table)

	k := maxSegments
	if len(table.rows) < k {
		k = len(table.rows)
	}

	groups, err := clusterRows(features, k)
	if err != nil {
		return nil, err
	}

	uploadID := uuid.NewString()
	total := len(table.rows)

	personas := make([]model.Persona, 0, len(groups))
	for i, rows := range groups {
		description, stats := describeSegment(table, rows)
		pct := int(math.Round(float64(len(rows)) / float64(total) * 100))

		personas = append(personas, model.Persona{
			Name:        fmt.Sprintf("Persona Segment %d", i+1),
			Description: description,
			Size:        len(rows),
			Pct:         pct,
			UploadID:    uploadID,
			SourceFile:  filename,
			Stats:       stats,
		})
	}

	if err := s.personaRepo.ReplaceAll(ctx, personas); err != nil {
		return nil, fmt.Errorf("保存画像失败: %v", err)
	}

	// 取回带 ID 的记录
	saved, err := s.personaRepo.ListByUpload(ctx, uploadID)
	if err != nil {
		return nil, fmt.Errorf("读取画像失败: %v", err)
	}

	return &dto.AnalyzeSegmentsResponse{
		UploadID: uploadID,
		RowCount: total,
		Personas: toPersonaResponses(saved),
	}, nil
}

// ==================== 查询 ====================

// ListPersonas 列出当前全部画像
func (s *SegmentService) ListPersonas(ctx context.Context) ([]dto.PersonaResponse, error) {
	personas, err := s.personaRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toPersonaResponses(personas), nil
}

// GetPersona 按 ID 取画像（persona 生成模式使用）
func (s *SegmentService) GetPersona(ctx context.Context, id int64) (*model.Persona, error) {
	return s.personaRepo.GetByID(ctx, id)
}

func toPersonaResponses(personas []model.Persona) []dto.PersonaResponse {
	out := make([]dto.PersonaResponse, 0, len(personas))
	for _, p := range personas {
		out = append(out, dto.PersonaResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Size:        p.Size,
			Pct:         p.Pct,
		})
	}
	return out
}
